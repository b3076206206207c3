package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/chrisdamba/foodrollup/internal/models"
)

const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
)

var ErrUnknownFormat = errors.New("source: unknown format")

// DecodeOrder maps one loosely typed record onto models.Order. Keys match the order's camelCase names,
// case-insensitively and ignoring underscores, so created_at and createdAt both work. Numbers given as strings
// are accepted, with a leading currency symbol stripped.
//
// A record with an id is always kept: money or quantity that cannot be read becomes 0, unreadable items are dropped
// and every such field is listed in Order.Defaulted. Only a record without an id that fails to map is an error.
func DecodeOrder(raw map[string]any) (models.Order, error) {
	fields, defaulted := coerceFields(raw)

	var o models.Order
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(strings.ReplaceAll(mapKey, "_", ""), fieldName)
		},
	})
	if err != nil {
		return o, err
	}
	if err := decoder.Decode(fields); err != nil {
		if o.ID == "" {
			return o, err
		}
		defaulted = append(defaulted, failedFields(err)...)
	}
	if len(defaulted) > 0 {
		sort.Strings(defaulted)
		o.Defaulted = defaulted
	}
	return o, nil
}

var (
	numericOrderFields = map[string]bool{"total": true, "deliveryfee": true}
	numericItemFields  = map[string]bool{"quantity": true, "unitprice": true, "linesubtotal": true}

	currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "")
)

func fieldKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

// coerceFields returns a copy of raw with numeric and item fields in a shape mapstructure cannot reject.
func coerceFields(raw map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(raw))
	var defaulted []string
	for k, v := range raw {
		switch key := fieldKey(k); {
		case numericOrderFields[key]:
			f, ok := lenientNumber(v)
			if !ok {
				defaulted = append(defaulted, k)
			}
			out[k] = f
		case key == "items":
			items, bad := coerceItems(k, v)
			defaulted = append(defaulted, bad...)
			if items != nil {
				out[k] = items
			}
		default:
			out[k] = v
		}
	}
	return out, defaulted
}

// coerceItems accepts a list of item objects or a JSON string holding one, as CSV exports carry it.
func coerceItems(name string, v any) ([]any, []string) {
	if v == nil {
		return nil, nil
	}
	if text, ok := v.(string); ok {
		var parsed []any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil, []string{name}
		}
		v = parsed
	}
	list, ok := v.([]any)
	if !ok {
		return nil, []string{name}
	}

	var defaulted []string
	items := make([]any, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			defaulted = append(defaulted, name)
			continue
		}
		item := make(map[string]any, len(m))
		for k, fv := range m {
			if !numericItemFields[fieldKey(k)] {
				item[k] = fv
				continue
			}
			f, ok := lenientNumber(fv)
			if !ok {
				defaulted = append(defaulted, name+"."+k)
			}
			item[k] = f
		}
		items = append(items, item)
	}
	return items, defaulted
}

// lenientNumber reads v as a number. Absent and blank values are 0 and not a defect.
func lenientNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		text := strings.TrimSpace(currencySymbols.Replace(n))
		if text == "" {
			return 0, true
		}
		f, err := cast.ToFloat64E(text)
		return f, err == nil
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

// failedFields pulls the quoted field names out of a mapstructure error.
func failedFields(err error) []string {
	var merr *mapstructure.Error
	if !errors.As(err, &merr) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(merr.Errors))
	for _, msg := range merr.Errors {
		if _, rest, ok := strings.Cut(msg, "'"); ok {
			if name, _, ok := strings.Cut(rest, "'"); ok {
				fields = append(fields, name)
				continue
			}
		}
		fields = append(fields, msg)
	}
	return fields
}

// Decoded is the outcome of reading a batch. Rejected counts records that could not be mapped at all. Defaulted
// counts kept records with at least one field left at its zero value.
type Decoded struct {
	Orders    []models.Order
	Rejected  int
	Defaulted int
}

func Decode(r io.Reader, format string) (Decoded, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return decodeJSON(r)
	case FormatNDJSON, "jsonl":
		return decodeNDJSON(r)
	case FormatCSV:
		return decodeCSV(r)
	}
	return Decoded{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func (d *Decoded) add(raw map[string]any) {
	o, err := DecodeOrder(raw)
	if err != nil {
		d.Rejected++
		return
	}
	if len(o.Defaulted) > 0 {
		d.Defaulted++
	}
	d.Orders = append(d.Orders, o)
}

// decodeJSON accepts a top-level array or an object with an "orders" array.
func decodeJSON(r io.Reader) (Decoded, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Decoded{}, err
	}
	body = bytes.TrimSpace(body)

	var records []map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if len(body) > 0 && body[0] == '{' {
		var wrapper struct {
			Orders []map[string]any `json:"orders"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return Decoded{}, fmt.Errorf("error decoding json: %w", err)
		}
		records = wrapper.Orders
	} else if err := dec.Decode(&records); err != nil {
		return Decoded{}, fmt.Errorf("error decoding json: %w", err)
	}

	d := Decoded{Orders: make([]models.Order, 0, len(records))}
	for _, raw := range records {
		d.add(raw)
	}
	return d, nil
}

func decodeNDJSON(r io.Reader) (Decoded, error) {
	d := Decoded{Orders: make([]models.Order, 0)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			d.Rejected++
			continue
		}
		d.add(raw)
	}
	if err := scanner.Err(); err != nil {
		return d, fmt.Errorf("error reading ndjson line %d: %w", line, err)
	}
	return d, nil
}

// addressColumns are flat CSV columns folded into the nested delivery address.
var addressColumns = map[string]string{
	"line1":    "line1",
	"city":     "city",
	"postcode": "postcode",
}

// decodeCSV reads a header row followed by one order per row. The items column, if present, holds a JSON array
// which DecodeOrder parses.
func decodeCSV(r io.Reader) (Decoded, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Decoded{Orders: make([]models.Order, 0)}, nil
	}
	if err != nil {
		return Decoded{}, fmt.Errorf("error reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	d := Decoded{Orders: make([]models.Order, 0)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d, fmt.Errorf("error reading csv: %w", err)
		}

		raw := make(map[string]any, len(header))
		address := make(map[string]any)
		for i, col := range header {
			if i >= len(row) {
				break
			}
			value := row[i]
			if value == "" {
				continue
			}
			if field, ok := addressColumns[strings.ToLower(col)]; ok {
				address[field] = value
				continue
			}
			raw[col] = value
		}
		if len(address) > 0 {
			raw["deliveryAddress"] = address
		}
		d.add(raw)
	}
	return d, nil
}
