package model

import "strconv"

// ScanHeader 是扫描报告 CSV 的固定表头
var ScanHeader = []string{
	"Sort", "IP", "Technology", "Finding", "Notes",
	"Port", "Service", "Host", "OS", "Proto", "Product",
	"Service FP", "NSE Script ID", "NSE Script Output",
}

// ScriptEntry 是端口下的一条 NSE 脚本结果
type ScriptEntry struct {
	ID     string
	Output string
}

// PortEntry 表示一个开放端口
type PortEntry struct {
	Proto     string
	Port      string // 端口号，保留原始字符串
	Service   string // 缺省为 unknown
	Product   string
	ServiceFP string
	Scripts   []ScriptEntry
}

// HostRecord 表示一台存活主机
type HostRecord struct {
	IP    string
	Host  string
	OS    string
	Ports []PortEntry
}

// ScanRow 是扫描报告中的一行（一端口一脚本）
type ScanRow struct {
	Sort         int
	IP           string
	Technology   string
	Finding      string
	Notes        string
	Port         string
	Service      string
	Host         string
	OS           string
	Proto        string
	Product      string
	ServiceFP    string
	ScriptID     string
	ScriptOutput string
}

// Record 按表头顺序输出字段
func (r ScanRow) Record() []string {
	sort := ""
	if r.Sort > 0 {
		sort = strconv.Itoa(r.Sort)
	}
	return []string{
		sort, r.IP, r.Technology, r.Finding, r.Notes,
		r.Port, r.Service, r.Host, r.OS, r.Proto, r.Product,
		r.ServiceFP, r.ScriptID, r.ScriptOutput,
	}
}

// IOCKind 区分邮箱与 URL 两类 IOC
type IOCKind int

const (
	IOCEmail IOCKind = iota
	IOCURL
)

func (k IOCKind) String() string {
	if k == IOCURL {
		return "url"
	}
	return "email"
}

// IOCRecord 是一条已校验的 IOC，Source 为来源工作簿文件名
type IOCRecord struct {
	Source string
	Value  string
}

// EmailHeader / URLHeader 是两个汇总 CSV 的表头
var (
	EmailHeader = []string{"Tipper", "IOC_SENDER_EMAIL"}
	URLHeader   = []string{"Tipper", "IOC_URLs"}
)
