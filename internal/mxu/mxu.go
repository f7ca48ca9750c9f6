// Package mxu loads grammar units in the MXU (mixfix unit) file format, a
// TOML-based format that declares host classes and their members, the mixfix
// operators they define, and the bodies whose source is to be compiled.
//
// A file is either a UNIT, which holds declarations, or a MANIFEST, which
// lists other files relative to itself. Everything reachable from the file
// given to Load is combined into one Unit.
package mxu

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/mixfix/internal/host"
	"github.com/dekarrin/mixfix/internal/types"
)

const (
	// FormatName is the value of the 'format' key of every MXU file.
	FormatName = "MXU"

	// TypeUnit is the 'type' of a file that holds declarations.
	TypeUnit = "UNIT"

	// TypeManifest is the 'type' of a file that lists other files.
	TypeManifest = "MANIFEST"

	MaxManifestRecursionDepth = 32
)

var (
	// ErrFormat is returned (wrapped) when a file is not a valid MXU file.
	ErrFormat = errors.New("malformed MXU file")

	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when manifests include
	// other manifests more than MaxManifestRecursionDepth levels deep.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest includes,
	// directly or through other manifests, itself.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")
)

// FileInfo contains the essential information all MXU files must contain.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// BodyKind is what a Body is the source of.
type BodyKind int

const (
	// FieldBody is the initializer of a field.
	FieldBody BodyKind = iota

	// DefaultArgumentBody is the default value of an optional parameter.
	DefaultArgumentBody

	// ExpressionBody is a method body that consists of a single expression.
	ExpressionBody
)

func (k BodyKind) String() string {
	switch k {
	case FieldBody:
		return "field"
	case DefaultArgumentBody:
		return "default-argument"
	case ExpressionBody:
		return "expression"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// ParseBodyKind parses the name of a body kind as given by BodyKind.String.
func ParseBodyKind(s string) (BodyKind, error) {
	switch strings.ToLower(s) {
	case "field":
		return FieldBody, nil
	case "default-argument", "default":
		return DefaultArgumentBody, nil
	case "expression", "":
		return ExpressionBody, nil
	default:
		return ExpressionBody, fmt.Errorf("not one of 'field', 'default-argument', or 'expression': %q", s)
	}
}

// Param is a parameter that is in scope in a Body.
type Param struct {
	Name string
	Type *types.Type
}

// Body is a piece of source that is compiled as one expression.
type Body struct {
	Kind   BodyKind
	Owner  *types.Type
	Name   string
	Static bool

	// Type is the type the expression must have.
	Type *types.Type

	Params []Param

	// Throws are the exception types that the body declares. Any other
	// exception thrown by the expression is unhandled.
	Throws []*types.Type

	Source string
	File   string

	// Line is the line of File that Source begins on, 1-indexed.
	Line int
}

func (b Body) String() string {
	return fmt.Sprintf("%s %s.%s", b.Kind, b.Owner, b.Name)
}

// Unit is everything declared in a set of MXU files.
type Unit struct {
	Model  *host.Model
	Bodies []Body

	// Files are the UNIT files that were read, in the order they were read.
	Files []string
}

// Load loads a unit from the MXU file at path. If the file is a manifest, the
// files it lists are loaded as well, recursively. All declarations are
// combined and checked together, so one file may use a class declared in
// another.
func Load(path string) (Unit, error) {
	units, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return Unit{}, err
	}
	return parseUnits(units)
}

// Decode loads a unit from the bytes of a single UNIT file. path is used for
// bodies that do not give their own file.
func Decode(data []byte, path string) (Unit, error) {
	unmarshaled, err := unmarshalUnit(data)
	if err != nil {
		return Unit{}, err
	}
	unmarshaled.path = path
	return parseUnits([]topLevelUnit{unmarshaled})
}

// ScanFileInfo reads the MXU header from data. Only the bytes up to the first
// table header are parsed.
func ScanFileInfo(data []byte) (FileInfo, error) {
	var topLevelEnd = -1
	var onNewLine = true
	for b := range data {
		if onNewLine && data[b] == '[' {
			topLevelEnd = b
			break
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}
