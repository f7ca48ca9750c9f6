package mxu

type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelUnit is the top-level structure containing all keys in a complete
// MXU 'UNIT' type file.
type topLevelUnit struct {
	Format    string     `toml:"format"`
	Type      string     `toml:"type"`
	Classes   []class    `toml:"class"`
	Fields    []field    `toml:"field"`
	Methods   []method   `toml:"method"`
	Operators []operator `toml:"operator"`
	Bodies    []body     `toml:"body"`

	// path is the file the unit was read from. It is not part of the file.
	path string
}

type class struct {
	Name       string `toml:"name"`
	Super      string `toml:"super"`
	Visibility string `toml:"visibility"`
}

type field struct {
	Owner      string `toml:"owner"`
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	Static     bool   `toml:"static"`
	Visibility string `toml:"visibility"`
}

type method struct {
	Owner       string   `toml:"owner"`
	Name        string   `toml:"name"`
	Params      []string `toml:"params"`
	Return      string   `toml:"return"`
	Static      bool     `toml:"static"`
	VarArgs     bool     `toml:"varargs"`
	Constructor bool     `toml:"constructor"`
	Throws      []string `toml:"throws"`
	Visibility  string   `toml:"visibility"`
}

type operator struct {
	Owner    string           `toml:"owner"`
	Name     string           `toml:"name"`
	Result   string           `toml:"result"`
	Priority int              `toml:"priority"`
	ReadAs   bool             `toml:"readas"`
	Throws   []string         `toml:"throws"`
	Action   string           `toml:"action"`
	Pattern  []patternElement `toml:"pattern"`
}

// patternElement must have exactly one of its kind keys set.
type patternElement struct {
	Keyword   string `toml:"keyword"`
	Operand   string `toml:"operand"`
	Variable  string `toml:"variable"`
	Optional  string `toml:"optional"`
	And       string `toml:"and"`
	Not       string `toml:"not"`
	Inclusive bool   `toml:"inclusive"`
	MinOne    bool   `toml:"min_one"`
	Separator string `toml:"separator"`
	Default   string `toml:"default"`
}

type body struct {
	Kind   string   `toml:"kind"`
	Owner  string   `toml:"owner"`
	Name   string   `toml:"name"`
	Type   string   `toml:"type"`
	Static bool     `toml:"static"`
	File   string   `toml:"file"`
	Line   int      `toml:"line"`
	Source string   `toml:"source"`
	Throws []string `toml:"throws"`
	Params []param  `toml:"param"`
}

type param struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}
