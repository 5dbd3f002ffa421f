package mapper

import (
	"regexp"
	"sort"
	"strings"
)

var rxNonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeader — нижний регистр, NBSP/NNBSP → пробел, ё→е,
// служебные символы → пробел, схлопнутые пробелы.
func normHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", " ", " ", " ", "ё", "е").Replace(s)
	s = rxNonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveColumn ищет реальный заголовок таблицы по желаемому имени.
// Поддерживает альтернативы через "|" (например "Артикул|ART").
// Порядок: точное совпадение → совпадение нормализованных →
// частичное вхождение (want ⊂ header или header ⊂ want), берём
// самое длинное совпадение.
func resolveColumn(headers []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) как есть
	for _, a := range alts {
		for _, h := range headers {
			if h == a {
				return h
			}
		}
	}

	// 2) нормализованные
	var nAlts []string
	for _, a := range alts {
		nAlts = append(nAlts, normHeader(a))
	}
	for _, h := range headers {
		nh := normHeader(h)
		for _, n := range nAlts {
			if n != "" && nh == n {
				return h
			}
		}
	}

	// 3) частичные вхождения, лучший по длине совпавшей части
	best, bestScore := "", 0
	for _, h := range headers {
		nh := normHeader(h)
		for _, n := range nAlts {
			if n == "" || nh == "" {
				continue
			}
			score := 0
			if strings.Contains(nh, n) {
				score = len(n)
			} else if strings.Contains(n, nh) {
				score = len(nh)
			}
			if score > bestScore {
				bestScore, best = score, h
			}
		}
	}
	return best
}

// suggestColumns — до n заголовков, ближайших к want по Дамерау-Левенштейну
// (на нормализованных строках), для подсказок в ошибке маппинга.
func suggestColumns(headers []string, want string, n int) []string {
	nw := normHeader(strings.Split(want, "|")[0])
	if nw == "" {
		return nil
	}
	type cand struct {
		header string
		dist   int
	}
	var cands []cand
	for _, h := range headers {
		nh := normHeader(h)
		if nh == "" {
			continue
		}
		d := damerauLevenshtein(nw, nh)
		limit := len([]rune(nw))
		if l := len([]rune(nh)); l > limit {
			limit = l
		}
		// дальше половины длины — уже не «опечатка»
		if d*2 <= limit {
			cands = append(cands, cand{h, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].header < cands[j].header
	})
	var out []string
	for i := 0; i < len(cands) && i < n; i++ {
		out = append(out, cands[i].header)
	}
	return out
}

func damerauLevenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := 0; i <= al; i++ {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			// вставка / удаление / замена
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)

			// транспозиция соседних символов
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if v := dp[i-2][j-2] + 1; v < dp[i][j] {
					dp[i][j] = v
				}
			}
		}
	}
	return dp[al][bl]
}
