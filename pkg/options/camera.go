package options

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Vec3 is a point or rotation in model space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
	Z float64 `json:"z" yaml:"z" mapstructure:"z"`
}

func (v Vec3) csv() string {
	return formatFloat(v.X) + "," + formatFloat(v.Y) + "," + formatFloat(v.Z)
}

// Camera is one of CameraPosition or CameraEye.
type Camera interface {
	// Arg returns the comma separated value of the --camera flag.
	Arg() string
	camera()
}

// CameraPosition places the camera by translation, rotation and distance.
type CameraPosition struct {
	Translate Vec3    `json:"translate" yaml:"translate" mapstructure:"translate"`
	Rotate    Vec3    `json:"rotate" yaml:"rotate" mapstructure:"rotate"`
	Dist      float64 `json:"dist" yaml:"dist" mapstructure:"dist"`
}

func (c CameraPosition) Arg() string {
	return c.Translate.csv() + "," + c.Rotate.csv() + "," + formatFloat(c.Dist)
}

func (CameraPosition) camera() {}

// CameraEye places the camera at eye looking at center.
type CameraEye struct {
	Eye    Vec3 `json:"eye" yaml:"eye" mapstructure:"eye"`
	Center Vec3 `json:"center" yaml:"center" mapstructure:"center"`
}

func (c CameraEye) Arg() string {
	return c.Eye.csv() + "," + c.Center.csv()
}

func (CameraEye) camera() {}

// ParseCamera builds a Camera from a decoded map. The presence of "translate"
// selects CameraPosition, otherwise CameraEye. Every sub-field of the chosen
// shape is required.
func ParseCamera(m map[string]any) (Camera, error) {
	if m == nil {
		return nil, nil
	}
	if _, ok := m["translate"]; ok {
		if err := requireKeys(m, "translate", "rotate", "dist"); err != nil {
			return nil, err
		}
		var c CameraPosition
		if err := decodeCamera(m, &c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err := requireKeys(m, "eye", "center"); err != nil {
		return nil, err
	}
	var c CameraEye
	if err := decodeCamera(m, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func requireKeys(m map[string]any, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: camera is missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func decodeCamera(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("%w: camera: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

var cameraType = reflect.TypeOf((*Camera)(nil)).Elem()

// CameraDecodeHook lets mapstructure decode a camera map into the Camera interface.
func CameraDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != cameraType {
			return data, nil
		}
		switch v := data.(type) {
		case Camera:
			return v, nil
		case map[string]any:
			return ParseCamera(v)
		case map[any]any:
			m := make(map[string]any, len(v))
			for k, val := range v {
				m[fmt.Sprint(k)] = val
			}
			return ParseCamera(m)
		default:
			return data, nil
		}
	}
}

// cameraJSON decodes a camera from JSON through ParseCamera.
func cameraJSON(raw json.RawMessage) (Camera, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: camera: %v", domain.ErrInvalidInput, err)
	}
	return ParseCamera(m)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
