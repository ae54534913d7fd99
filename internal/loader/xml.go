package loader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrEntityDeclared 表示文件中出现了 <!ENTITY 声明
var ErrEntityDeclared = errors.New("xml entity declaration found")

var entityMarker = []byte("<!entity")

// Node 是通用 XML 元素树节点，只保留元素名、属性和子元素
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
}

// Name 返回元素本地名
func (n *Node) Name() string {
	return n.XMLName.Local
}

// Attr 读取属性，ok 表示属性是否存在
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find 返回第一个同名直接子元素，不存在时返回 nil
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// FindAll 返回全部同名直接子元素
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// HasEntityDecl 不区分大小写地检查原始内容中是否有实体声明
func HasEntityDecl(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return bytes.Contains(bytes.ToLower(data), entityMarker), nil
}

// LoadXML 解析 XML 文件并返回根元素
func LoadXML(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseXML(f)
}

// ParseXML 从 reader 解析 XML 文档。非 UTF-8 编码按 XML 声明中的 encoding 转换
func ParseXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var root Node
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("文档为空")
		}
		return nil, err
	}

	// 根元素之后只允许空白、注释和处理指令
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, fmt.Errorf("根元素之后存在多余元素 <%s>", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("根元素之后存在多余文本")
			}
		}
	}
	return &root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("无法识别的编码 %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("不支持的编码 %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
