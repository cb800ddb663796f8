package menu

import (
	"math"

	"whattocook/internal/core/recipe"
)

// balancedCategories 均衡菜單優先涵蓋的分類
var balancedCategories = []recipe.Category{
	recipe.CategoryMeatDish,
	recipe.CategoryVegetarian,
	recipe.CategorySoup,
	recipe.CategoryAquatic,
}

const (
	// suitableMaxCookingTime 均衡挑選時偏好的最長烹飪時間（分鐘）
	suitableMaxCookingTime = 60
	// servingsFactor 份量係數，避免採買過多
	servingsFactor = 0.8
	// soupPeopleThreshold 達到此人數時菜單需要湯品
	soupPeopleThreshold = 4
)

// Recommender 依人數與偏好推薦菜單，只讀取建構時傳入的菜譜
type Recommender struct {
	recipes []recipe.Recipe
	rand    RandomSource
}

// Option 推薦器選項
type Option func(*Recommender)

// WithRandom 注入亂數來源
func WithRandom(src RandomSource) Option {
	return func(r *Recommender) {
		if src != nil {
			r.rand = src
		}
	}
}

// NewRecommender 創建推薦器
func NewRecommender(recipes []recipe.Recipe, opts ...Option) *Recommender {
	r := &Recommender{
		recipes: recipes,
		rand:    DefaultSource(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len 推薦器持有的菜譜數量
func (r *Recommender) Len() int {
	return len(r.recipes)
}

// FilterByPreferences 依序套用全部條件，回傳新的切片
func (r *Recommender) FilterByPreferences(prefs ...Preference) []recipe.Recipe {
	filtered := make([]recipe.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		if matchesAll(rec, prefs) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func matchesAll(rec recipe.Recipe, prefs []Preference) bool {
	for _, p := range prefs {
		if !p.Matches(rec) {
			return false
		}
	}
	return true
}

// RecommendMenu 根據人數和偏好推薦菜品組合；沒有符合條件的菜譜時回傳空菜單
func (r *Recommender) RecommendMenu(peopleCount int, prefs ...Preference) []recipe.Recipe {
	candidates := r.FilterByPreferences(prefs...)
	if len(candidates) == 0 {
		return []recipe.Recipe{}
	}
	shuffle(r.rand, candidates)

	picked := r.buildBalancedMenu(candidates, peopleCount)

	servings := ScaledServings(peopleCount)
	menu := make([]recipe.Recipe, len(picked))
	for i, idx := range picked {
		menu[i] = candidates[idx].Clone()
		menu[i].Servings = servings
	}
	return menu
}

// buildBalancedMenu 回傳候選清單中被選中的索引，依加入順序排列
func (r *Recommender) buildBalancedMenu(candidates []recipe.Recipe, peopleCount int) []int {
	target := TargetDishCount(peopleCount)
	selected := make(map[int]bool, target)
	menu := make([]int, 0, target+1)
	add := func(idx int) {
		selected[idx] = true
		menu = append(menu, idx)
	}

	categories := append([]recipe.Category(nil), balancedCategories...)
	shuffle(r.rand, categories)

	for _, cat := range categories {
		var all, suitable []int
		for i, c := range candidates {
			if c.Category != cat {
				continue
			}
			all = append(all, i)
			if c.Difficulty != recipe.DifficultyHard && c.CookingTime <= suitableMaxCookingTime {
				suitable = append(suitable, i)
			}
		}
		switch {
		case len(suitable) > 0:
			add(suitable[intn(r.rand, len(suitable))])
		case len(all) > 0:
			add(all[intn(r.rand, len(all))])
		}
	}

	for len(menu) < target {
		remaining := make([]int, 0, len(candidates)-len(menu))
		for i := range candidates {
			if !selected[i] {
				remaining = append(remaining, i)
			}
		}
		if len(remaining) == 0 {
			break
		}
		add(remaining[intn(r.rand, len(remaining))])
	}

	if peopleCount >= soupPeopleThreshold && !hasCategory(candidates, menu, recipe.CategorySoup) {
		var soups []int
		for i, c := range candidates {
			if c.Category == recipe.CategorySoup {
				soups = append(soups, i)
			}
		}
		if len(soups) > 0 {
			add(soups[intn(r.rand, len(soups))])
		}
	}

	// 補湯後可能超出目標數，截斷時可能把湯截掉
	if len(menu) > target {
		menu = menu[:target]
	}
	return menu
}

func hasCategory(candidates []recipe.Recipe, menu []int, cat recipe.Category) bool {
	for _, idx := range menu {
		if candidates[idx].Category == cat {
			return true
		}
	}
	return false
}

// TargetDishCount 依人數決定菜品數量
func TargetDishCount(peopleCount int) int {
	switch {
	case peopleCount <= 2:
		return 2
	case peopleCount <= 4:
		return 3
	case peopleCount <= 6:
		return 4
	case peopleCount <= 8:
		return 5
	default:
		return 6
	}
}

// ScaledServings 推薦菜單上每道菜的份量：人數的八成，至少一份
func ScaledServings(peopleCount int) int {
	return max(1, int(math.Ceil(float64(peopleCount)*servingsFactor)))
}

// CalculateIngredients 見套件函式 CalculateIngredients
func (r *Recommender) CalculateIngredients(recipes []recipe.Recipe, peopleCount int) []ShoppingItem {
	return CalculateIngredients(recipes, peopleCount)
}

// GetRecommendations 見套件函式 GetRecommendations
func (r *Recommender) GetRecommendations(peopleCount int) []string {
	return GetRecommendations(peopleCount)
}
