package shared

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigFile decodes the YAML file into out. Unknown keys are an error so
// typos in config files surface at startup instead of silently defaulting.
func LoadConfigFile(file string, out interface{}) error {
	fh, err := os.Open(file) // #nosec G304 -- Variable provided only from internal / CLI sources
	if err != nil {
		return err
	}
	defer fh.Close() // #nosec G307 -- Closing a file with defer is not unsafe

	if err := LoadConfigReader(fh, out); err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	return nil
}

func LoadConfigReader(reader io.Reader, out interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
