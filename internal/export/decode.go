package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/weather-outlook-service/internal/domain"
)

// DecodeJSON reads a JSON export back into a document, restoring the
// concrete result type from its "type" discriminator.
func DecodeJSON(r io.Reader) (domain.ExportDocument, error) {
	var aux struct {
		domain.ExportDocument
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&aux); err != nil {
		return domain.ExportDocument{}, fmt.Errorf("decode export: %w", err)
	}

	doc := aux.ExportDocument
	result, err := decodeResult(aux.Result)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	doc.Result = result
	return doc, nil
}

func decodeResult(raw json.RawMessage) (domain.Result, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode result type: %w", err)
	}

	switch head.Type {
	case domain.ResultHistorical:
		var rec domain.ExactWeatherRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode historical result: %w", err)
		}
		return &rec, nil
	case domain.ResultClimatology:
		var sum domain.ClimatologySummary
		if err := json.Unmarshal(raw, &sum); err != nil {
			return nil, fmt.Errorf("decode climatology result: %w", err)
		}
		return &sum, nil
	default:
		return nil, fmt.Errorf("unknown result type %q", head.Type)
	}
}
