package extract

import (
	"errors"
	"fmt"
	"strings"

	"recon_report/internal/loader"
)

// ErrMissingField 表示必填元素或属性缺失
var ErrMissingField = errors.New("missing required field")

// Policy 描述字段缺失时的处理方式
type Policy int

const (
	// Optional 元素或属性缺失均取默认值
	Optional Policy = iota
	// RequiredDefault 元素必须存在，属性缺失取默认值
	RequiredDefault
	// RequiredStrict 元素和属性缺失均报错
	RequiredStrict
)

// Field 描述一个从 XML 节点中提取的属性：先按 Path 逐级取第一个子元素，再读 Attr
type Field struct {
	Name    string
	Path    []string
	Attr    string
	Policy  Policy
	Default string
}

// FieldError 记录缺失的字段
type FieldError struct {
	Field string
	Path  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrMissingField, e.Field, e.Path)
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// Extract 按策略读取字段值
func (f Field) Extract(n *loader.Node) (string, error) {
	cur := n
	for _, name := range f.Path {
		cur = cur.Find(name)
		if cur == nil {
			if f.Policy == Optional {
				return f.Default, nil
			}
			return "", f.missing()
		}
	}

	if v, ok := cur.Attr(f.Attr); ok {
		return v, nil
	}
	if f.Policy == RequiredStrict {
		return "", f.missing()
	}
	return f.Default, nil
}

func (f Field) missing() error {
	path := strings.Join(append(append([]string{}, f.Path...), "@"+f.Attr), "/")
	return &FieldError{Field: f.Name, Path: path}
}

// Nmap XML 中用到的字段
var (
	fieldHostState = Field{Name: "host state", Path: []string{"status"}, Attr: "state", Policy: Optional}
	fieldAddress   = Field{Name: "address", Path: []string{"address"}, Attr: "addr", Policy: RequiredStrict}
	fieldHostname  = Field{Name: "hostname", Path: []string{"hostnames", "hostname"}, Attr: "name", Policy: Optional}
	fieldOSName    = Field{Name: "os", Path: []string{"os", "osmatch"}, Attr: "name", Policy: Optional}

	fieldPortState = Field{Name: "port state", Path: []string{"state"}, Attr: "state", Policy: Optional}
	fieldProto     = Field{Name: "protocol", Attr: "protocol", Policy: RequiredStrict}
	fieldPortID    = Field{Name: "portid", Attr: "portid", Policy: RequiredStrict}
	fieldService   = Field{Name: "service", Path: []string{"service"}, Attr: "name", Policy: Optional, Default: "unknown"}
	fieldProduct   = Field{Name: "product", Path: []string{"service"}, Attr: "product", Policy: Optional}
	fieldServiceFP = Field{Name: "servicefp", Path: []string{"service"}, Attr: "servicefp", Policy: Optional}

	fieldScriptID     = Field{Name: "script id", Attr: "id", Policy: Optional}
	fieldScriptOutput = Field{Name: "script output", Attr: "output", Policy: Optional}
)
