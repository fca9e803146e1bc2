package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// UnmatchedTomlKeysError errors are returned by the Load function when
// ErrorOnUnmatchedKeys is set to true and there are unmatched keys in the input
// toml cfg file. The string returned by Error() contains the names of the
// missing keys.
type UnmatchedTomlKeysError struct {
	Keys []toml.Key
}

func (e *UnmatchedTomlKeysError) Error() string {
	return fmt.Sprintf("There are keys in the config file that do not match any field in the given struct: %v", e.Keys)
}

// variantFile maps config.yml to config.<variant>.yml.
func variantFile(file, variant string) string {
	ext := path.Ext(file)
	if ext == "" {
		return file + "." + variant
	}
	return strings.TrimSuffix(file, ext) + "." + variant + ext
}

func isRegularFile(file string) bool {
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}

func (c *Config) envPrefix() string {
	if c.ENVPrefix == "" {
		if prefix := os.Getenv("CONFIG_ENV_PREFIX"); prefix != "" {
			return prefix
		}
		return "CONFIG"
	}
	return c.ENVPrefix
}

// configurationFiles resolves, for every requested file, the file itself,
// its environment variant and, when neither exists, its example variant.
// Files are returned in the order they should be applied.
func (c *Config) configurationFiles(files ...string) []string {
	var result []string
	env := c.GetEnvironment()

	for _, file := range files {
		found := false

		if isRegularFile(file) {
			found = true
			result = append(result, file)
		}

		if envFile := variantFile(file, env); isRegularFile(envFile) {
			found = true
			result = append(result, envFile)
		}

		if !found {
			if example := variantFile(file, "example"); isRegularFile(example) {
				c.Logger.Info("config file missing, using example", zap.String("file", file), zap.String("example", example))
				result = append(result, example)
			} else if c.Verbose {
				c.Logger.Debug("config file missing", zap.String("file", file))
			}
		}
	}
	return result
}

func processFile(cfg interface{}, file string, errorOnUnmatchedKeys bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	switch {
	case strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml"):
		return unmarshalYAML(data, cfg, errorOnUnmatchedKeys)
	case strings.HasSuffix(file, ".toml"):
		return unmarshalToml(data, cfg, errorOnUnmatchedKeys)
	case strings.HasSuffix(file, ".json"):
		return unmarshalJSON(data, cfg, errorOnUnmatchedKeys)
	default:
		if err := unmarshalToml(data, cfg, errorOnUnmatchedKeys); err == nil {
			return nil
		} else if errUnmatchedKeys, ok := err.(*UnmatchedTomlKeysError); ok {
			return errUnmatchedKeys
		}

		if err := unmarshalJSON(data, cfg, errorOnUnmatchedKeys); err == nil {
			return nil
		} else if strings.Contains(err.Error(), "json: unknown field") {
			return err
		}

		if err := unmarshalYAML(data, cfg, errorOnUnmatchedKeys); err == nil {
			return nil
		} else if yErr, ok := err.(*yaml.TypeError); ok {
			return yErr
		}

		return errors.New("failed to decode config")
	}
}

func unmarshalYAML(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	if errorOnUnmatchedKeys {
		return yaml.UnmarshalStrict(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func unmarshalToml(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	metadata, err := toml.Decode(string(data), cfg)
	if err == nil && len(metadata.Undecoded()) > 0 && errorOnUnmatchedKeys {
		return &UnmatchedTomlKeysError{Keys: metadata.Undecoded()}
	}
	return err
}

// unmarshalJSON unmarshals the given data into the cfg interface.
// If the errorOnUnmatchedKeys boolean is true, an error will be returned if there
// are keys in the data that do not match fields in the cfg interface.
func unmarshalJSON(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	if errorOnUnmatchedKeys {
		decoder.DisallowUnknownFields()
	}

	err := decoder.Decode(cfg)
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

func isBlank(field reflect.Value) bool {
	return reflect.DeepEqual(field.Interface(), reflect.Zero(field.Type()).Interface())
}

// applyDefaults fills blank fields from their `default` tag, recursing into
// nested structs.
func applyDefaults(cfg interface{}) error {
	cfgValue := reflect.Indirect(reflect.ValueOf(cfg))
	if cfgValue.Kind() != reflect.Struct {
		return errors.New("invalid config, should be struct")
	}

	cfgType := cfgValue.Type()
	for i := 0; i < cfgType.NumField(); i++ {
		fieldStruct := cfgType.Field(i)
		field := cfgValue.Field(i)

		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		if value := fieldStruct.Tag.Get("default"); value != "" && isBlank(field) {
			if err := yaml.Unmarshal([]byte(value), field.Addr().Interface()); err != nil {
				return fmt.Errorf("default for %s: %w", fieldStruct.Name, err)
			}
		}

		for field.Kind() == reflect.Ptr && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct {
			if err := applyDefaults(field.Addr().Interface()); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyEnv overrides fields from the environment. A field Port inside
// Server with prefix APP is read from APP_SERVER_PORT (or the name in its
// `env` tag). Fields tagged `required:"true"` must end up non-blank.
func (c *Config) applyEnv(cfg interface{}, prefixes ...string) error {
	cfgValue := reflect.Indirect(reflect.ValueOf(cfg))
	if cfgValue.Kind() != reflect.Struct {
		return errors.New("invalid config, should be struct")
	}

	cfgType := cfgValue.Type()
	for i := 0; i < cfgType.NumField(); i++ {
		fieldStruct := cfgType.Field(i)
		field := cfgValue.Field(i)

		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		names := []string{fieldStruct.Tag.Get("env")}
		if names[0] == "" {
			joined := strings.Join(append(prefixes, fieldStruct.Name), "_")
			names = []string{joined, strings.ToUpper(joined)}
		}

		for _, name := range names {
			value := os.Getenv(name)
			if value == "" {
				continue
			}
			if c.Verbose {
				c.Logger.Debug("config from env", zap.String("field", fieldStruct.Name), zap.String("env", name))
			}
			if err := setFromString(field, value); err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			break
		}

		if fieldStruct.Tag.Get("required") == "true" && isBlank(field) {
			return errors.New(fieldStruct.Name + " is required, but blank")
		}

		for field.Kind() == reflect.Ptr && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct {
			if err := c.applyEnv(field.Addr().Interface(), append(prefixes, fieldStruct.Name)...); err != nil {
				return err
			}
		}
	}
	return nil
}

func setFromString(field reflect.Value, value string) error {
	switch reflect.Indirect(field).Kind() {
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "", "0", "f", "false":
			field.SetBool(false)
		default:
			field.SetBool(true)
		}
	case reflect.String:
		field.SetString(value)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String && !strings.HasPrefix(value, "[") {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
			return nil
		}
		return yaml.Unmarshal([]byte(value), field.Addr().Interface())
	default:
		return yaml.Unmarshal([]byte(value), field.Addr().Interface())
	}
	return nil
}

func (c *Config) load(cfg interface{}, files ...string) error {
	if err := applyDefaults(cfg); err != nil {
		return err
	}

	for _, file := range c.configurationFiles(files...) {
		c.Logger.Debug("loading config file", zap.String("file", file))
		if err := processFile(cfg, file, c.ErrorOnUnmatchedKeys); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}

	prefix := c.envPrefix()
	if prefix == "-" {
		return c.applyEnv(cfg)
	}
	return c.applyEnv(cfg, prefix)
}
