package recipe

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"whattocook/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrEmptyTitle 標題與檔名都無法提供菜名
	ErrEmptyTitle = errors.New("recipe has no usable title")
	// ErrParsePanic 解析過程中發生 panic
	ErrParsePanic = errors.New("recipe parser panicked")
)

// ParseError 單一文件解析失敗
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	titlePattern       = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	descriptionPattern = regexp.MustCompile(`(?m)^>[ \t]*(.+)$`)
	imagePattern       = regexp.MustCompile(`!\[.*?\]\((.+?)\)`)
	sectionEndPattern  = regexp.MustCompile(`^#{2,}\s`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	ingredientSectionPattern = sectionPattern(IngredientSectionSynonyms)
	quantitySectionPattern   = sectionPattern(QuantitySectionSynonyms)
	stepSectionPattern       = sectionPattern(StepSectionSynonyms)
)

// sectionPattern 建立「二級以上標題且文字以同義詞開頭」的比對式
func sectionPattern(synonyms []string) *regexp.Regexp {
	quoted := make([]string, len(synonyms))
	for i, s := range synonyms {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return regexp.MustCompile(`^#{2,}\s*(?:` + strings.Join(quoted, "|") + `)`)
}

// Parser 將 Markdown 菜譜文件轉換為 Recipe，本身無狀態，可併發使用
type Parser struct{}

// NewParser 創建解析器
func NewParser() *Parser {
	return &Parser{}
}

// Parse 解析單一文件；任何失敗都回傳 nil，讓載入器略過此文件繼續處理其他文件
func (p *Parser) Parse(content, pathOrName string) *Recipe {
	r, err := p.ParseDocument(content, pathOrName)
	if err != nil {
		common.LogWarn("解析菜譜失敗",
			zap.String("path", pathOrName),
			zap.Error(err),
		)
		return nil
	}
	return r
}

// ParseDocument 與 Parse 相同，但回傳失敗原因
func (p *Parser) ParseDocument(content, pathOrName string) (r *Recipe, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = &ParseError{Path: pathOrName, Err: fmt.Errorf("%w: %v", ErrParsePanic, rec)}
		}
	}()

	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	name := extractTitle(content, pathOrName)
	if name == "" {
		return nil, &ParseError{Path: pathOrName, Err: ErrEmptyTitle}
	}

	ingredients := extractIngredients(lines)
	steps := extractSteps(lines)

	return &Recipe{
		ID:          GenerateID(name),
		Name:        name,
		Category:    InferCategory(pathOrName, name),
		Difficulty:  InferDifficulty(len(ingredients), len(steps)),
		CookingTime: EstimateCookingTime(len(steps)),
		Servings:    DefaultServings,
		Ingredients: ingredients,
		Steps:       steps,
		Images:      extractImages(content),
		Description: extractDescription(content),
	}, nil
}

// GenerateID 由菜名生成 slug：空白換成連字號並轉小寫
func GenerateID(name string) string {
	return strings.ToLower(whitespacePattern.ReplaceAllString(name, "-"))
}

func extractTitle(content, pathOrName string) string {
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		raw := strings.TrimSpace(m[1])
		if name := SanitizeTitle(raw); name != "" {
			return name
		}
		if raw != "" {
			return raw
		}
	}
	return SanitizeTitle(titleFromPath(pathOrName))
}

// titleFromPath 取檔名、去掉副檔名並把 - _ 換成空白
func titleFromPath(pathOrName string) string {
	base := path.Base(strings.ReplaceAll(pathOrName, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}

// SanitizeTitle 去掉「做法」「制作方法」等字尾及其後內容，只留菜名
func SanitizeTitle(raw string) string {
	n := raw
	for _, suffix := range TitleSuffixes {
		if idx := strings.Index(n, suffix); idx >= 0 {
			n = n[:idx]
		}
	}
	n = strings.TrimRight(n, " \t　-–—")
	return strings.TrimSpace(n)
}

func extractDescription(content string) string {
	if m := descriptionPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractImages(content string) []string {
	images := []string{}
	for _, m := range imagePattern.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			images = append(images, m[1])
		}
	}
	return images
}

// findSection 回傳符合標題的章節內容行（不含標題），直到下一個二級以上標題
func findSection(lines []string, header *regexp.Regexp) ([]string, bool) {
	start := -1
	for i, line := range lines {
		if header.MatchString(strings.TrimSpace(line)) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	end := len(lines)
	for j := start + 1; j < len(lines); j++ {
		if sectionEndPattern.MatchString(strings.TrimSpace(lines[j])) {
			end = j
			break
		}
	}
	return lines[start+1 : end], true
}

// contentLines 去掉空行與標題行
func contentLines(section []string) []string {
	out := make([]string, 0, len(section))
	for _, line := range section {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func parseIngredientSection(section []string, namesOnly bool) []Ingredient {
	ingredients := []Ingredient{}
	for _, line := range contentLines(section) {
		if ing, ok := parseIngredientLine(line, namesOnly); ok {
			ingredients = append(ingredients, ing)
		}
	}
	return ingredients
}

func extractIngredients(lines []string) []Ingredient {
	namesSection, hasNames := findSection(lines, ingredientSectionPattern)
	quantitySection, hasQuantities := findSection(lines, quantitySectionPattern)

	var names, quantities []Ingredient
	if hasNames {
		names = parseIngredientSection(namesSection, true)
	}
	if hasQuantities {
		quantities = parseIngredientSection(quantitySection, false)
	}

	merged := MergeIngredients(names, quantities)
	if len(merged) == 0 && hasNames {
		merged = parseIngredientSection(namesSection, true)
	}
	if merged == nil {
		merged = []Ingredient{}
	}
	return merged
}

// MergeIngredients 以名稱章節為基礎，分量章節覆蓋同名食材的數量與單位，其餘附加在後
func MergeIngredients(names, quantities []Ingredient) []Ingredient {
	if len(quantities) == 0 {
		return names
	}
	merged := make([]Ingredient, 0, len(names)+len(quantities))
	index := make(map[string]int, len(names)+len(quantities))
	for _, ing := range names {
		if i, ok := index[ing.Name]; ok {
			merged[i] = ing
			continue
		}
		index[ing.Name] = len(merged)
		merged = append(merged, ing)
	}
	for _, q := range quantities {
		if i, ok := index[q.Name]; ok {
			merged[i].Amount = q.Amount
			merged[i].Unit = q.Unit
			continue
		}
		index[q.Name] = len(merged)
		merged = append(merged, q)
	}
	return merged
}

func extractSteps(lines []string) []string {
	steps := []string{}
	section, ok := findSection(lines, stepSectionPattern)
	if !ok {
		return steps
	}
	for _, line := range contentLines(section) {
		steps = append(steps, parseStepLine(line))
	}
	return steps
}
