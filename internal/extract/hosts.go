package extract

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"recon_report/internal/loader"
	"recon_report/internal/model"
)

// Options 控制主机提取行为
type Options struct {
	// AbortOnMissingAddress 为 true 时存活主机缺少地址会使整个文档失败，否则跳过该主机
	AbortOnMissingAddress bool
	// Progress 每处理完一个 host 元素回调一次
	Progress func(done, total int)
}

// Stats 汇总一次提取的计数
type Stats struct {
	Hosts        int // host 元素总数
	HostsUp      int // 状态为 up 且成功提取
	HostsSkipped int // 存活但因缺少必填字段被跳过
	OpenPorts    int
	PortsSkipped int
}

// ExtractHosts 遍历根元素下的 host，保留状态为 up 的主机及其 open 端口
func ExtractHosts(root *loader.Node, opts Options) ([]model.HostRecord, Stats, error) {
	var stats Stats
	var hosts []model.HostRecord

	elems := root.FindAll("host")
	stats.Hosts = len(elems)
	for i, h := range elems {
		rec, ok, err := extractHost(h, &stats)
		if err != nil {
			if opts.AbortOnMissingAddress || !errors.Is(err, ErrMissingField) {
				return nil, stats, fmt.Errorf("第 %d 个 host: %w", i+1, err)
			}
			stats.HostsSkipped++
			log.Warn("存活主机缺少地址，已跳过", "index", i+1, "err", err)
		} else if ok {
			hosts = append(hosts, rec)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(elems))
		}
	}
	return hosts, stats, nil
}

func extractHost(h *loader.Node, stats *Stats) (model.HostRecord, bool, error) {
	var rec model.HostRecord

	state, _ := fieldHostState.Extract(h)
	if state != "up" {
		return rec, false, nil
	}

	ip, err := fieldAddress.Extract(h)
	if err != nil {
		return rec, false, err
	}
	stats.HostsUp++
	rec.IP = ip
	rec.Host, _ = fieldHostname.Extract(h)
	rec.OS, _ = fieldOSName.Extract(h)

	for _, p := range h.Find("ports").FindAll("port") {
		entry, ok, err := extractPort(p)
		if err != nil {
			stats.PortsSkipped++
			log.Warn("端口缺少必填字段，已跳过", "ip", ip, "err", err)
			continue
		}
		if !ok {
			continue
		}
		stats.OpenPorts++
		rec.Ports = append(rec.Ports, entry)
	}
	return rec, true, nil
}

func extractPort(p *loader.Node) (model.PortEntry, bool, error) {
	var entry model.PortEntry

	if state, _ := fieldPortState.Extract(p); state != "open" {
		return entry, false, nil
	}

	var err error
	if entry.Proto, err = fieldProto.Extract(p); err != nil {
		return entry, false, err
	}
	if entry.Port, err = fieldPortID.Extract(p); err != nil {
		return entry, false, err
	}
	entry.Service, _ = fieldService.Extract(p)
	entry.Product, _ = fieldProduct.Extract(p)
	entry.ServiceFP, _ = fieldServiceFP.Extract(p)

	for _, s := range p.FindAll("script") {
		id, _ := fieldScriptID.Extract(s)
		out, _ := fieldScriptOutput.Extract(s)
		entry.Scripts = append(entry.Scripts, model.ScriptEntry{ID: id, Output: out})
	}
	// 没有脚本时补一条空记录，保证端口至少输出一行
	if len(entry.Scripts) == 0 {
		entry.Scripts = []model.ScriptEntry{{}}
	}
	return entry, true, nil
}

// Flatten 将主机→端口→脚本展开为报告行，Sort 留待排序后填写。
// 端口的 Scripts 由 extractPort 保证至少一条
func Flatten(hosts []model.HostRecord) []model.ScanRow {
	var rows []model.ScanRow
	for _, h := range hosts {
		for _, p := range h.Ports {
			for _, s := range p.Scripts {
				rows = append(rows, model.ScanRow{
					IP:           h.IP,
					Port:         p.Port,
					Service:      p.Service,
					Host:         h.Host,
					OS:           h.OS,
					Proto:        p.Proto,
					Product:      p.Product,
					ServiceFP:    p.ServiceFP,
					ScriptID:     s.ID,
					ScriptOutput: s.Output,
				})
			}
		}
	}
	return rows
}

// ExtractRows 提取并展开为报告行
func ExtractRows(root *loader.Node, opts Options) ([]model.ScanRow, Stats, error) {
	hosts, stats, err := ExtractHosts(root, opts)
	if err != nil {
		return nil, stats, err
	}
	return Flatten(hosts), stats, nil
}
