package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign copies same-named fields from src into dst and returns dst
// StructAssign 按字段名复制结构体
func StructAssign[T any](src any, dst *T) (*T, error) {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.Wrap(err, "copy struct failed")
	}
	return dst, nil
}

// StructToMap converts a struct to map via its json tags
// StructToMap 通过 json tag 将结构体转为 map
func StructToMap(param any) (map[string]any, error) {
	data := make(map[string]any)
	b, err := sonic.Marshal(param)
	if err != nil {
		return nil, errors.Wrap(err, "marshal struct failed")
	}
	if err := sonic.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrap(err, "unmarshal struct failed")
	}
	return data, nil
}
