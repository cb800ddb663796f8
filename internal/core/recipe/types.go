package recipe

// Category 菜品分類，用於菜單均衡
type Category string

const (
	CategoryMeatDish   Category = "meat_dish"
	CategoryAquatic    Category = "aquatic"
	CategoryVegetarian Category = "vegetarian"
	CategorySoup       Category = "soup"
	CategoryDrink      Category = "drink"
	CategoryDessert    Category = "dessert"
)

// Categories 全部菜品分類
var Categories = []Category{
	CategoryMeatDish,
	CategoryAquatic,
	CategoryVegetarian,
	CategorySoup,
	CategoryDrink,
	CategoryDessert,
}

// Valid 檢查分類是否合法
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty 難度，由食材與步驟數推導
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid 檢查難度是否合法
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Unit 食材單位
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "个"
	UnitWhole      Unit = "只"
	UnitSlice      Unit = "片"
	UnitStick      Unit = "根"
	// UnitUnspecified 適量，不帶數值
	UnitUnspecified Unit = "适量"
)

// AmountUnspecified 適量的數量標記
const AmountUnspecified = "适量"

// IngredientCategory 食材分類，用於購物清單排序
type IngredientCategory string

const (
	IngredientMeat      IngredientCategory = "meat"
	IngredientVegetable IngredientCategory = "vegetable"
	IngredientSeasoning IngredientCategory = "seasoning"
	IngredientOther     IngredientCategory = "other"
)

// 預設值
const (
	DefaultCategory   = CategoryMeatDish
	DefaultDifficulty = DifficultyMedium
	DefaultServings   = 2
)

// Ingredient 食材
type Ingredient struct {
	Name     string             `json:"name"`
	Amount   string             `json:"amount"`
	Unit     Unit               `json:"unit"`
	Category IngredientCategory `json:"category"`
}

// Unspecified 是否為適量食材
func (i Ingredient) Unspecified() bool {
	return i.Unit == UnitUnspecified || i.Amount == AmountUnspecified
}

// Recipe 解析後的菜譜，建立後視為不可變
type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    Category     `json:"category"`
	Difficulty  Difficulty   `json:"difficulty"`
	CookingTime int          `json:"cookingTime"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	Images      []string     `json:"images"`
	Description string       `json:"description,omitempty"`
}

// Clone 深拷貝菜譜，避免共享底層切片
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = cloneSlice(r.Ingredients)
	out.Steps = cloneSlice(r.Steps)
	out.Images = cloneSlice(r.Images)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
