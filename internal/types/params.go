package types

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// Params are the resolved parameters handed to the image transform for one
// tool, e.g. {"percent": 20} for brightness or {"angle": 15} for rotate.
type Params map[string]interface{}

// ParameterValue is the tagged union a transformation's parameter column
// resolves to exactly once at load time: either a fixed value, or a
// user/auto pair for dual-value tools.
type ParameterValue struct {
	User Params
	Auto Params
}

func Fixed(p Params) ParameterValue {
	return ParameterValue{User: p}
}

func Dual(user, auto Params) ParameterValue {
	return ParameterValue{User: user, Auto: auto}
}

// IsDual reports whether the value carries a derived opposite.
func (v ParameterValue) IsDual() bool { return v.Auto != nil }

// Tools whose parameter has a meaningful opposite. For these, a bare user
// value gets an auto value derived by negating its numeric fields
// (brightness +20 pairs with -20, and so on).
var dualCapableTools = map[string]bool{
	"brightness": true,
	"contrast":   true,
	"saturation": true,
	"exposure":   true,
	"hue":        true,
}

// ResolveParameters decodes a transformation's raw parameter column into the
// tagged union. Three stored shapes are accepted: an explicit
// {"user_value":…, "auto_value":…} pair, a bare parameter object for a
// dual-capable tool (opposite derived), or a bare parameter object for a
// single-value tool (fixed).
func ResolveParameters(toolType string, raw datatypes.JSON) (ParameterValue, error) {
	params := Params{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return ParameterValue{}, fmt.Errorf("parameters for %s: %w", toolType, err)
		}
	}

	userRaw, hasUser := params["user_value"]
	autoRaw, hasAuto := params["auto_value"]
	if hasUser || hasAuto {
		user := asParams(userRaw)
		auto := asParams(autoRaw)
		if auto == nil {
			auto = deriveOpposite(user)
		}
		return Dual(user, auto), nil
	}

	if dualCapableTools[toolType] {
		return Dual(params, deriveOpposite(params)), nil
	}
	return Fixed(params), nil
}

// asParams normalizes a decoded JSON value into a parameter map. Bare
// scalars are wrapped under the canonical "value" key.
func asParams(v interface{}) Params {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return Params(m)
	}
	return Params{"value": v}
}

// deriveOpposite negates every numeric field of the user value. Non-numeric
// fields carry over unchanged.
func deriveOpposite(user Params) Params {
	auto := make(Params, len(user))
	for k, v := range user {
		if f, ok := toFloat(v); ok {
			auto[k] = -f
			continue
		}
		auto[k] = v
	}
	return auto
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ParamFloat reads a numeric field from a parameter map, accepting the
// canonical "value" key as a fallback name.
func ParamFloat(p Params, key string, def float64) float64 {
	if v, ok := p[key]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	if key != "value" {
		if v, ok := p["value"]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
	}
	return def
}

// ParamBool reads a boolean field from a parameter map.
func ParamBool(p Params, key string) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
