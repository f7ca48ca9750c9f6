package mxu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// manifStack is used to detect circular references and to stop recursion at
// MaxManifestRecursionDepth levels.
//
// Returns ErrManifestEmpty if and only if the first manifest in the stack is
// empty.
func recursiveUnmarshalResource(path string, manifStack []string) ([]topLevelUnit, error) {
	path = filepath.Clean(path)

	fileData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return nil, fmt.Errorf("%q: reading from disk: %w", path, loadErr)
	}

	fileInfo, err := ScanFileInfo(fileData)
	if err != nil {
		return nil, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != FormatName {
		return nil, fmt.Errorf("%q: %w: file does not have a 'format = \"%s\"' entry", path, ErrFormat, FormatName)
	}

	switch strings.ToUpper(fileInfo.Type) {
	case TypeUnit:
		unmarshaled, err := unmarshalUnit(fileData)
		if err != nil {
			return nil, fmt.Errorf("unit file %q: %w", path, err)
		}
		unmarshaled.path = path
		return []topLevelUnit{unmarshaled}, nil
	case TypeManifest:
		if len(manifStack) >= MaxManifestRecursionDepth {
			return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		manif, err := unmarshalManifest(fileData)
		if err != nil {
			return nil, fmt.Errorf("manifest file %q: %w", path, err)
		}

		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		manifDir := filepath.Dir(path)

		var units []topLevelUnit
		for _, relPath := range manif.Files {
			included, err := recursiveUnmarshalResource(filepath.Join(manifDir, relPath), manifSubStack)
			if err != nil {
				// a file that was already included higher up is skipped
				if errors.Is(err, ErrManifestCircularRef) {
					continue
				}
				return nil, fmt.Errorf("in file referred to by manifest file %q:\n    %w", path, err)
			}
			units = append(units, included...)
		}

		if len(manifStack) == 0 && len(units) == 0 {
			return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}
		return units, nil
	default:
		return nil, fmt.Errorf("%q: %w: 'type' must be set to either %q or %q", path, ErrFormat, TypeUnit, TypeManifest)
	}
}

// unmarshalUnit unmarshals a unit from the given bytes. It does not check any
// of the declarations in it.
func unmarshalUnit(tomlData []byte) (topLevelUnit, error) {
	var unit topLevelUnit
	if tomlErr := toml.Unmarshal(tomlData, &unit); tomlErr != nil {
		return unit, tomlErr
	}

	if strings.ToUpper(unit.Format) != FormatName {
		return unit, fmt.Errorf("in header: %w: 'format' key must exist and be set to %q", ErrFormat, FormatName)
	}
	if strings.ToUpper(unit.Type) != TypeUnit {
		return unit, fmt.Errorf("in header: %w: 'type' must exist and be set to %q", ErrFormat, TypeUnit)
	}

	return unit, nil
}

func unmarshalManifest(tomlData []byte) (topLevelManifest, error) {
	var manif topLevelManifest
	if tomlErr := toml.Unmarshal(tomlData, &manif); tomlErr != nil {
		return manif, tomlErr
	}

	if strings.ToUpper(manif.Format) != FormatName {
		return manif, fmt.Errorf("in header: %w: 'format' key must exist and be set to %q", ErrFormat, FormatName)
	}
	if strings.ToUpper(manif.Type) != TypeManifest {
		return manif, fmt.Errorf("in header: %w: 'type' must exist and be set to %q", ErrFormat, TypeManifest)
	}

	return manif, nil
}
