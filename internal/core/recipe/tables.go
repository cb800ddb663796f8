package recipe

import "strings"

// 章節同義詞，依標題文字前綴比對
var (
	IngredientSectionSynonyms = []string{"食材", "原料", "材料", "用料", "配料", "必备原料和工具"}
	QuantitySectionSynonyms   = []string{"计算", "配比", "分量"}
	StepSectionSynonyms       = []string{"制作", "操作", "做法", "步骤", "方法", "烹饪"}
)

// TitleSuffixes 標題中需要截掉的「做法」類字尾（連同其後內容）
var TitleSuffixes = []string{"的做法", "做法", "制作方法", "制作步骤"}

// BulletMarkers 行首項目符號
var BulletMarkers = []string{"-", "*", "•"}

// UnitAliases 單位正規化表，未列出的一律視為適量
var UnitAliases = map[string]Unit{
	"g":    UnitGram,
	"克":    UnitGram,
	"公斤":   UnitKilogram,
	"kg":   UnitKilogram,
	"千克":   UnitKilogram,
	"ml":   UnitMilliliter,
	"毫升":   UnitMilliliter,
	"毫升滴":  UnitMilliliter,
	"毫升/滴": UnitMilliliter,
	"滴":    UnitMilliliter,
	"l":    UnitLiter,
	"L":    UnitLiter,
	"升":    UnitLiter,
	"个":    UnitPiece,
	"只":    UnitWhole,
	"片":    UnitSlice,
	"根":    UnitStick,
	"适量":   UnitUnspecified,
}

// NormalizeUnit 將原始單位字串正規化
func NormalizeUnit(raw string) Unit {
	if u, ok := UnitAliases[strings.TrimSpace(raw)]; ok {
		return u
	}
	return UnitUnspecified
}

// keywordRule 關鍵字子字串比對規則，依順序先命中者勝出
type keywordRule[T any] struct {
	Value    T
	Keywords []string
}

func (r keywordRule[T]) matches(s string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IngredientKeywords 食材分類關鍵字，依 meat → vegetable → seasoning 順序比對
var IngredientKeywords = []keywordRule[IngredientCategory]{
	{IngredientMeat, []string{"肉", "鸡", "鸭", "鱼", "虾", "蟹", "牛", "羊", "猪"}},
	{IngredientVegetable, []string{"菜", "豆", "茄", "椒", "瓜", "萝卜", "洋葱", "蒜", "姜", "葱"}},
	{IngredientSeasoning, []string{"盐", "糖", "醋", "酱油", "料酒", "油", "粉", "精", "香料"}},
}

// CategorizeIngredient 依名稱推斷食材分類
func CategorizeIngredient(name string) IngredientCategory {
	for _, rule := range IngredientKeywords {
		if rule.matches(name) {
			return rule.Value
		}
	}
	return IngredientOther
}

// CategoryDirectories 路徑目錄名稱對應的菜品分類，依優先順序排列
var CategoryDirectories = []keywordRule[Category]{
	{CategorySoup, []string{"soup"}},
	{CategoryVegetarian, []string{"vegetarian", "vegetable_dish"}},
	{CategoryMeatDish, []string{"meat_dish"}},
	{CategoryAquatic, []string{"aquatic"}},
	{CategoryDrink, []string{"drink"}},
	{CategoryDessert, []string{"dessert"}},
}

// CategoryKeywords 路徑無法判斷時，依檔名或標題關鍵字推斷分類
var CategoryKeywords = []keywordRule[Category]{
	{CategorySoup, []string{"汤"}},
	{CategoryVegetarian, []string{"素", "蔬菜"}},
	{CategoryAquatic, []string{"海鲜", "鱼"}},
	{CategoryDrink, []string{"饮料", "饮品"}},
	{CategoryDessert, []string{"甜品", "蛋糕"}},
}

// InferCategory 先看路徑中的目錄名稱，再看檔名/標題關鍵字，都沒有時回傳預設分類
func InferCategory(pathOrName, title string) Category {
	lowerPath := "/" + strings.Trim(strings.ToLower(strings.ReplaceAll(pathOrName, "\\", "/")), "/") + "/"
	for _, rule := range CategoryDirectories {
		for _, dir := range rule.Keywords {
			if strings.Contains(lowerPath, "/"+dir+"/") {
				return rule.Value
			}
		}
	}

	haystack := pathOrName + " " + title
	for _, rule := range CategoryKeywords {
		if rule.matches(haystack) {
			return rule.Value
		}
	}
	return DefaultCategory
}

// InferDifficulty 依食材與步驟數推導難度
func InferDifficulty(ingredientCount, stepCount int) Difficulty {
	switch {
	case ingredientCount <= 5 && stepCount <= 5:
		return DifficultyEasy
	case ingredientCount >= 10 || stepCount >= 10:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// EstimateCookingTime 以步驟數粗估烹飪分鐘數，最少 15 分鐘
func EstimateCookingTime(stepCount int) int {
	return max(15, stepCount*5)
}
