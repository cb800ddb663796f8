package menu

import (
	"sort"
	"strconv"
	"strings"

	"whattocook/internal/core/recipe"
)

// ShoppingItem 購物清單項目；Unit 為原始單位，數量超過 1000 g/ml 時只縮小數值
type ShoppingItem struct {
	Name        string                    `json:"name"`
	TotalAmount string                    `json:"totalAmount"`
	Unit        recipe.Unit               `json:"unit"`
	Category    recipe.IngredientCategory `json:"category"`
	Recipes     []string                  `json:"recipes"`
}

// categoryOrder 購物清單排序：肉類 > 蔬菜 > 調料 > 其他
var categoryOrder = map[recipe.IngredientCategory]int{
	recipe.IngredientMeat:      0,
	recipe.IngredientVegetable: 1,
	recipe.IngredientSeasoning: 2,
	recipe.IngredientOther:     3,
}

const scaleThreshold = 1000

type bucketKey struct {
	name string
	unit recipe.Unit
}

type bucket struct {
	total    float64
	category recipe.IngredientCategory
	recipes  []string
}

// CalculateIngredients 計算食材總量；縮放比例使用傳入菜譜本身的 Servings
func CalculateIngredients(recipes []recipe.Recipe, peopleCount int) []ShoppingItem {
	var order []bucketKey
	buckets := make(map[bucketKey]*bucket)

	for _, rec := range recipes {
		servings := rec.Servings
		if servings <= 0 {
			servings = recipe.DefaultServings
		}
		multiplier := float64(peopleCount) / float64(servings)

		for _, ing := range rec.Ingredients {
			key := bucketKey{name: ing.Name, unit: ing.Unit}
			b, ok := buckets[key]
			if !ok {
				b = &bucket{category: ing.Category}
				buckets[key] = b
				order = append(order, key)
			}
			b.total += ingredientAmount(ing) * multiplier
			if !containsString(b.recipes, rec.Name) {
				b.recipes = append(b.recipes, rec.Name)
			}
		}
	}

	items := make([]ShoppingItem, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		total := b.total
		if (key.unit == recipe.UnitGram || key.unit == recipe.UnitMilliliter) && total >= scaleThreshold {
			total /= scaleThreshold
		}
		items = append(items, ShoppingItem{
			Name:        key.name,
			TotalAmount: recipe.FormatAmount(total),
			Unit:        key.unit,
			Category:    b.category,
			Recipes:     b.recipes,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return categoryRank(items[i].Category) < categoryRank(items[j].Category)
	})
	return items
}

// ingredientAmount 適量以 1 計算，無法解析的數量計為 0
func ingredientAmount(ing recipe.Ingredient) float64 {
	if ing.Unit == recipe.UnitUnspecified {
		return 1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(ing.Amount), 64)
	if err != nil {
		return 0
	}
	return v
}

func categoryRank(c recipe.IngredientCategory) int {
	if rank, ok := categoryOrder[c]; ok {
		return rank
	}
	return categoryOrder[recipe.IngredientOther]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
