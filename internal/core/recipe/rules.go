package recipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	bulletPattern         = regexp.MustCompile(`^[-*•]\s+`)
	fullWidthAsidePattern = regexp.MustCompile(`（.*?）`)
	halfWidthAsidePattern = regexp.MustCompile(`\(.*?\)`)
)

// lineRule 食材行解析規則；extract 回傳 false 表示不匹配
type lineRule struct {
	name string
	// namesOnly 僅在食材名稱章節中啟用
	namesOnly bool
	extract   func(line string) (Ingredient, bool)
}

// ingredientRules 由上到下依序嘗試，先命中者勝出。
// 範圍規則必須排在單一數值規則之前，否則 "1-2 个" 會被當成數量 1、單位 "-2 个"。
var ingredientRules = []lineRule{
	{name: "range", extract: extractRange},
	{name: "quantity", extract: extractQuantity},
	{name: "unspecified", extract: extractUnspecified},
	{name: "bare_name", namesOnly: true, extract: extractBareName},
}

var (
	rangePattern       = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(.+)$`)
	quantityPattern    = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*(.+)$`)
	unspecifiedPattern = regexp.MustCompile(`^(.+?)\s*适量$`)
)

func extractRange(line string) (Ingredient, bool) {
	m := rangePattern.FindStringSubmatch(line)
	if m == nil {
		return Ingredient{}, false
	}
	lo, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Ingredient{}, false
	}
	hi, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Ingredient{}, false
	}
	return newIngredient(m[1], FormatAmount((lo+hi)/2), m[4]), true
}

func extractQuantity(line string) (Ingredient, bool) {
	m := quantityPattern.FindStringSubmatch(line)
	if m == nil {
		return Ingredient{}, false
	}
	return newIngredient(m[1], m[2], m[3]), true
}

func extractUnspecified(line string) (Ingredient, bool) {
	m := unspecifiedPattern.FindStringSubmatch(line)
	if m == nil {
		return Ingredient{}, false
	}
	return newIngredient(m[1], AmountUnspecified, string(UnitUnspecified)), true
}

func extractBareName(line string) (Ingredient, bool) {
	return newIngredient(line, AmountUnspecified, string(UnitUnspecified)), true
}

// newIngredient 組裝食材，未識別的單位會同時把數量改為適量
func newIngredient(name, amount, rawUnit string) Ingredient {
	name = strings.TrimSpace(name)
	unit := NormalizeUnit(rawUnit)
	amount = strings.TrimSpace(amount)
	if unit == UnitUnspecified {
		amount = AmountUnspecified
	}
	return Ingredient{
		Name:     name,
		Amount:   amount,
		Unit:     unit,
		Category: CategorizeIngredient(name),
	}
}

// FormatAmount 整數不帶小數，其餘四捨五入保留一位小數（2.25 → 2.3）
func FormatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// cleanIngredientLine 去掉項目符號與括號內的補充說明
func cleanIngredientLine(line string) string {
	line = bulletPattern.ReplaceAllString(line, "")
	line = fullWidthAsidePattern.ReplaceAllString(line, "")
	line = halfWidthAsidePattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// parseIngredientLine 依規則表解析一行；namesOnly 為 false 時不接受純名稱
func parseIngredientLine(line string, namesOnly bool) (Ingredient, bool) {
	cleaned := cleanIngredientLine(line)
	if cleaned == "" {
		return Ingredient{}, false
	}
	for _, rule := range ingredientRules {
		if rule.namesOnly && !namesOnly {
			continue
		}
		ing, ok := rule.extract(cleaned)
		if !ok {
			continue
		}
		if ing.Name == "" {
			// 名稱為空代表行格式有誤
			return Ingredient{}, false
		}
		return ing, true
	}
	return Ingredient{}, false
}

var stepMarkerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\s+(.+)$`),
	regexp.MustCompile(`^\d+、\s*(.+)$`),
	regexp.MustCompile(`^[-*•]\s+(.+)$`),
}

// parseStepLine 去掉序號或項目符號；無標記的行原樣保留
func parseStepLine(line string) string {
	for _, p := range stepMarkerPatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return line
}
