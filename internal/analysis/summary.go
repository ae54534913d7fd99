package analysis

import "recon_report/internal/model"

// HostSummary 是单个 IP 的端口统计
type HostSummary struct {
	IP      string
	Ports   int // 去重后的 proto/port 数
	Entries int // 报告行数
}

// Summary 是一份扫描报告的汇总
type Summary struct {
	Hosts   int
	Entries int
	PerHost []HostSummary
}

// Summarize 统计报告行，PerHost 按首次出现顺序排列
func Summarize(rows []model.ScanRow) Summary {
	s := Summary{Entries: len(rows)}
	pos := make(map[string]int)
	seenPort := make(map[string]bool)

	for _, r := range rows {
		i, ok := pos[r.IP]
		if !ok {
			i = len(s.PerHost)
			pos[r.IP] = i
			s.PerHost = append(s.PerHost, HostSummary{IP: r.IP})
		}
		s.PerHost[i].Entries++

		key := r.IP + "|" + r.Proto + "/" + r.Port
		if !seenPort[key] {
			seenPort[key] = true
			s.PerHost[i].Ports++
		}
	}
	s.Hosts = len(s.PerHost)
	return s
}
