// Package export renders export documents as JSON or as a flattened
// key/value CSV, and derives download filenames.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Row is one flattened path and its scalar value. Null values have an empty
// Value.
type Row struct {
	Key   string
	Value string
}

// Flatten walks the JSON encoding of v depth-first in field order. Objects
// extend the path with ".field" (no dot at the root), arrays with "[i]", and
// a scalar root is keyed "value". Empty objects and arrays contribute no rows.
func Flatten(v any) ([]Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	rows := []Row{}
	if err := walk(dec, "", &rows); err != nil {
		return nil, fmt.Errorf("flatten document: %w", err)
	}
	return rows, nil
}

func walk(dec *json.Decoder, path string, rows *[]Row) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				child := key
				if path != "" {
					child = path + "." + key
				}
				if err := walk(dec, child, rows); err != nil {
					return err
				}
			}
		case '[':
			for i := 0; dec.More(); i++ {
				if err := walk(dec, path+"["+strconv.Itoa(i)+"]", rows); err != nil {
					return err
				}
			}
		}
		// Consume the closing delimiter.
		_, err := dec.Token()
		return err
	case nil:
		*rows = append(*rows, Row{Key: rootKey(path)})
	case string:
		*rows = append(*rows, Row{Key: rootKey(path), Value: t})
	case json.Number:
		*rows = append(*rows, Row{Key: rootKey(path), Value: t.String()})
	case bool:
		*rows = append(*rows, Row{Key: rootKey(path), Value: strconv.FormatBool(t)})
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

func rootKey(path string) string {
	if path == "" {
		return "value"
	}
	return path
}

// WriteCSV writes the flattened rows of v under a "key,value" header. Every
// value is quoted with inner quotes doubled; keys are written bare.
func WriteCSV(w io.Writer, v any) error {
	rows, err := Flatten(v)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("key,value\n")
	for _, r := range rows {
		buf.WriteString(r.Key)
		buf.WriteByte(',')
		buf.WriteString(quote(r.Value))
		buf.WriteByte('\n')
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func quote(s string) string {
	var b bytes.Buffer
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			b.WriteByte('"')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// WriteJSON writes v as indented JSON in struct field order.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
