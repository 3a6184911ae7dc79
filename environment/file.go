package environment

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadConstantsFromFile loads an environment table from a YAML file. An empty fileName returns the
// built-in table. A file replaces the built-in table wholesale, it is not merged.
func ReadConstantsFromFile(fileName string) (*Constants, error) {
	if fileName == "" {
		return &EnvironmentConstants, nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var constants Constants

	err = yaml.Unmarshal(data, &constants)
	if err != nil {
		return nil, errors.Wrap(err, "environment file")
	}
	if err = constants.Validate(); err != nil {
		return nil, err
	}
	return &constants, nil
}
