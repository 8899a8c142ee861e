package conv

import (
	"encoding/json"
	"errors"
	"reflect"
)

// Convert copies in into the value dest points to. Assignable values are set
// directly; anything else goes through a JSON round trip, which is how action
// arguments arriving as maps become typed inputs. A nil in leaves dest unchanged.
func Convert(in any, dest any) error {
	target := reflect.ValueOf(dest)
	if dest == nil || target.Kind() != reflect.Ptr || target.IsNil() {
		return errors.New("conv: destination must be a non-nil pointer")
	}
	if in == nil {
		return nil
	}
	if source := reflect.ValueOf(in); source.Type().AssignableTo(target.Elem().Type()) {
		target.Elem().Set(source)
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
