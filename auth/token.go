package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type storedToken struct {
	*oauth2.Token
	Scope string `json:"scope,omitempty"`
}

// FileTokenStore keeps the OAuth token between runs.
type FileTokenStore struct {
	Path string
}

// Load returns nil without error when nothing has been stored yet.
func (s FileTokenStore) Load() (*oauth2.Token, string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "read token")
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, "", errors.Wrapf(err, "decode token %s", s.Path)
	}
	if st.Token == nil || (st.AccessToken == "" && st.RefreshToken == "") {
		return nil, "", nil
	}
	return st.Token, st.Scope, nil
}

func (s FileTokenStore) Save(tok *oauth2.Token, scope string) error {
	data, err := json.MarshalIndent(storedToken{Token: tok, Scope: scope}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.Wrap(err, "create token dir")
		}
	}
	return errors.Wrap(os.WriteFile(s.Path, data, 0600), "write token")
}
