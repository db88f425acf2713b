package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// Report is the parsed content of a carve report.
type Report struct {
	Source Source
	Files  []FileObject
}

// ReadReport parses the <source> element and every <fileobject> element
// from r.
func ReadReport(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)
	report := &Report{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "source":
			if err := dec.DecodeElement(&report.Source, &start); err != nil {
				return nil, err
			}
		case "fileobject":
			var fo FileObject
			if err := dec.DecodeElement(&fo, &start); err != nil {
				return nil, err
			}
			report.Files = append(report.Files, fo)
		}
	}
	return report, nil
}

// ReadFileObjects returns all <fileobject> elements from the reader.
func ReadFileObjects(r io.Reader) ([]FileObject, error) {
	report, err := ReadReport(r)
	if err != nil {
		return nil, err
	}
	return report.Files, nil
}
