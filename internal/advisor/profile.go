package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/wealthadvisor/pkg/models"
)

// profileFields lists the required profile keys in prompt order.
var profileFields = []string{"age", "income", "risk_tolerance", "goals", "time_horizon"}

// MissingFieldError reports required profile keys absent from the input.
type MissingFieldError struct {
	Field   string   // first missing key, in profile field order
	Missing []string // every missing key
}

func (e *MissingFieldError) Error() string {
	if len(e.Missing) > 1 {
		return fmt.Sprintf("profile: missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("profile: missing required field %q", e.Field)
}

// DecodeProfile builds a Profile from a loosely typed map, such as a decoded
// JSON body or YAML document. Every field in profileFields must be present;
// extra keys are ignored. Numeric strings are accepted for numeric fields;
// integer fields reject fractional values rather than truncating them.
func DecodeProfile(raw map[string]any) (models.Profile, error) {
	var (
		p  models.Profile
		md mapstructure.Metadata
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		Metadata:         &md,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(decimalHook, integralHook),
	})
	if err != nil {
		return models.Profile{}, err
	}

	if missing := missingFields(raw); len(missing) > 0 {
		return models.Profile{}, &MissingFieldError{Field: missing[0], Missing: missing}
	}
	if err := dec.Decode(raw); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if len(md.Unset) > 0 {
		slices.Sort(md.Unset)
		return models.Profile{}, &MissingFieldError{Field: md.Unset[0], Missing: md.Unset}
	}
	return p, nil
}

func missingFields(raw map[string]any) []string {
	var missing []string
	for _, f := range profileFields {
		if v, ok := raw[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	return missing
}

// LoadProfile reads a YAML (or JSON) profile document from path.
func LoadProfile(path string) (models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return models.Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return DecodeProfile(raw)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook converts numbers and numeric strings into decimal.Decimal.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	}
	return nil, fmt.Errorf("cannot convert %T to decimal", data)
}

// integralHook refuses floats with a fractional part for integer fields.
func integralHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}
