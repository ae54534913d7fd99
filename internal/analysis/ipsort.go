package analysis

import (
	"sort"
	"strconv"
	"strings"

	"recon_report/internal/model"
)

// ipKey 将点分 IPv4 拆为 4 个整数；无法解析的地址 ok 为 false
func ipKey(ip string) (key [4]int, ok bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return key, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return key, false
		}
		key[i] = n
	}
	return key, true
}

// CompareIP 按数值比较两个点分地址，返回 -1/0/1。
// 非 IPv4 地址排在 IPv4 之后，相互之间按字符串比较
func CompareIP(a, b string) int {
	ka, okA := ipKey(a)
	kb, okB := ipKey(b)
	switch {
	case okA && okB:
		for i := 0; i < 4; i++ {
			if ka[i] != kb[i] {
				if ka[i] < kb[i] {
					return -1
				}
				return 1
			}
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

// SortRows 按 IP 稳定排序，同一 IP 内保持提取顺序
func SortRows(rows []model.ScanRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return CompareIP(rows[i].IP, rows[j].IP) < 0
	})
}

// AssignSortIndex 单次遍历为已排序的行编号：同一 IP 共用首次出现时分配的序号，序号从 1 连续递增
func AssignSortIndex(rows []model.ScanRow) {
	index := make(map[string]int)
	for i := range rows {
		n, ok := index[rows[i].IP]
		if !ok {
			n = len(index) + 1
			index[rows[i].IP] = n
		}
		rows[i].Sort = n
	}
}
