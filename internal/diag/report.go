package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/dekarrin/mixfix/internal/version"
	"github.com/dekarrin/rezi"
)

// reportMagic starts every encoded Report.
const reportMagic = version.ReportFormat

// ErrBadReport is returned when decoding data that is not a Report.
var ErrBadReport = errors.New("not a diagnostics report")

// Report is a saved set of diagnostics.
type Report struct {
	Diagnostics []Diagnostic
}

// MarshalBinary converts d into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (d Diagnostic) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(d.File)...)
	data = append(data, rezi.EncInt(d.Line)...)
	data = append(data, rezi.EncInt(d.Column)...)
	data = append(data, rezi.EncString(d.Message)...)
	data = append(data, rezi.EncString(d.SourceLine)...)

	return data, nil
}

// UnmarshalBinary sets the properties of d from a slice of bytes created with
// MarshalBinary.
func (d *Diagnostic) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	if d.File, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	data = data[n:]

	if d.Line, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("line: %w", err)
	}
	data = data[n:]

	if d.Column, n, err = rezi.DecInt(data); err != nil {
		return fmt.Errorf("column: %w", err)
	}
	data = data[n:]

	if d.Message, n, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	data = data[n:]

	if d.SourceLine, _, err = rezi.DecString(data); err != nil {
		return fmt.Errorf("source line: %w", err)
	}

	return nil
}

func (rep Report) MarshalBinary() ([]byte, error) {
	data := rezi.EncString(reportMagic)
	data = append(data, rezi.EncInt(len(rep.Diagnostics))...)
	for i := range rep.Diagnostics {
		data = append(data, rezi.EncBinary(rep.Diagnostics[i])...)
	}
	return data, nil
}

func (rep *Report) UnmarshalBinary(data []byte) error {
	magic, n, err := rezi.DecString(data)
	if err != nil || magic != reportMagic {
		return ErrBadReport
	}
	data = data[n:]

	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	data = data[n:]

	// every encoded diagnostic takes at least one byte
	if count < 0 || count > len(data) {
		return fmt.Errorf("%w: bad diagnostic count %d", ErrBadReport, count)
	}

	rep.Diagnostics = make([]Diagnostic, count)
	for i := 0; i < count; i++ {
		n, err = rezi.DecBinary(data, &rep.Diagnostics[i])
		if err != nil {
			return fmt.Errorf("diagnostic %d: %w", i, err)
		}
		data = data[n:]
	}

	return nil
}

// WriteReport encodes ds as a Report and writes it to w.
func WriteReport(w io.Writer, ds []Diagnostic) error {
	data := rezi.EncBinary(Report{Diagnostics: ds})
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadReport reads all of r and decodes it as a Report.
func ReadReport(r io.Reader) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}

	var rep Report
	if _, err := rezi.DecBinary(data, &rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}
