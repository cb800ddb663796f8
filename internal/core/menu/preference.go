package menu

import (
	"fmt"

	"whattocook/internal/core/recipe"
)

// PreferenceType 偏好條件的方向
type PreferenceType string

const (
	PreferenceInclude PreferenceType = "include"
	PreferenceExclude PreferenceType = "exclude"
)

// Preference 篩選條件；空值欄位代表該維度不限制，多個條件以 AND 組合
type Preference struct {
	Type           PreferenceType    `json:"type"`
	Category       recipe.Category   `json:"category,omitempty"`
	Difficulty     recipe.Difficulty `json:"difficulty,omitempty"`
	MaxCookingTime int               `json:"maxCookingTime,omitempty"`
}

// Validate 檢查偏好條件是否合法
func (p Preference) Validate() error {
	if p.Type != PreferenceInclude && p.Type != PreferenceExclude {
		return fmt.Errorf("unknown preference type %q", p.Type)
	}
	if p.Category != "" && !p.Category.Valid() {
		return fmt.Errorf("unknown category %q", p.Category)
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", p.Difficulty)
	}
	if p.MaxCookingTime < 0 {
		return fmt.Errorf("max cooking time must not be negative: %d", p.MaxCookingTime)
	}
	return nil
}

// Matches 判斷單一菜譜是否通過此條件
func (p Preference) Matches(r recipe.Recipe) bool {
	include := p.Type == PreferenceInclude
	if p.Category != "" && (r.Category == p.Category) != include {
		return false
	}
	if p.Difficulty != "" && (r.Difficulty == p.Difficulty) != include {
		return false
	}
	if p.MaxCookingTime > 0 && r.CookingTime > p.MaxCookingTime {
		return false
	}
	return true
}
