package util

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// URL 校验：可选协议头，主机名至少包含一个点且后缀为 2 位以上字母，可选路径
	urlRegexp = regexp.MustCompile(`^(https?://)?[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(/\S*)?$`)

	// 邮箱校验
	emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+$`)

	// 任意单个被方括号包裹的字符，如 [.] [:] [@]
	bracketRegexp = regexp.MustCompile(`\[(.)\]`)

	refangReplacer = strings.NewReplacer("[.]", ".", "[:]", ":")
)

// RefangURL 还原被“去武器化”的 URL，如 hxxp://evil[.]com → http://evil.com。
// 反复还原直到不再变化，嵌套写法 [[a]] 也能一次还原干净
func RefangURL(raw string) string {
	u := strings.TrimSpace(raw)
	for {
		next := refang(u)
		if next == u {
			break
		}
		u = next
	}

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "http://" + u
	}
	return u
}

func refang(u string) string {
	u = strings.ReplaceAll(u, "hxxp", "http")
	u = refangReplacer.Replace(u)
	u = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, u)
	return bracketRegexp.ReplaceAllString(u, "$1")
}

// IsValidURL 校验还原后的 URL 格式
func IsValidURL(u string) bool {
	return urlRegexp.MatchString(strings.TrimSpace(u))
}

// IsValidEmail 校验邮箱格式
func IsValidEmail(email string) bool {
	return emailRegexp.MatchString(strings.TrimSpace(email))
}
