package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomatoEggDoc = `# 西红柿炒鸡蛋的做法

> 简单易做的家常菜

![成品](./西红柿炒鸡蛋.jpg)

## 必备原料和工具

- 西红柿
- 鸡蛋
- 食用油
- 盐

## 计算

- 西红柿 1-2 个
- 鸡蛋 3 个（约 150g）
- 食用油 10 ml
- 盐 3 g
- 少许葱花

## 操作

1. 西红柿洗净切块
2、鸡蛋打散
- 热锅倒油
翻炒出锅

## 附加内容

- 可以加糖 ![糖](sugar.png)
`

func TestParseDocument_FullDocument(t *testing.T) {
	p := NewParser()

	r, err := p.ParseDocument(tomatoEggDoc, "dishes/vegetable_dish/西红柿炒鸡蛋.md")
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "西红柿炒鸡蛋", r.Name)
	assert.Equal(t, "西红柿炒鸡蛋", r.ID)
	assert.Equal(t, "简单易做的家常菜", r.Description)
	assert.Equal(t, CategoryVegetarian, r.Category)
	assert.Equal(t, DefaultServings, r.Servings)
	assert.Equal(t, []string{"./西红柿炒鸡蛋.jpg", "sugar.png"}, r.Images)

	assert.Equal(t, []Ingredient{
		{Name: "西红柿", Amount: "1.5", Unit: UnitPiece, Category: IngredientOther},
		{Name: "鸡蛋", Amount: "3", Unit: UnitPiece, Category: IngredientMeat},
		{Name: "食用油", Amount: "10", Unit: UnitMilliliter, Category: IngredientSeasoning},
		{Name: "盐", Amount: "3", Unit: UnitGram, Category: IngredientSeasoning},
	}, r.Ingredients)

	assert.Equal(t, []string{"西红柿洗净切块", "鸡蛋打散", "热锅倒油", "翻炒出锅"}, r.Steps)
	assert.Equal(t, DifficultyEasy, r.Difficulty)
	assert.Equal(t, 20, r.CookingTime)
}

func TestParse_Idempotent(t *testing.T) {
	p := NewParser()

	first := p.Parse(tomatoEggDoc, "dishes/vegetable_dish/西红柿炒鸡蛋.md")
	second := p.Parse(tomatoEggDoc, "dishes/vegetable_dish/西红柿炒鸡蛋.md")

	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestParse_TitleFallsBackToFileName(t *testing.T) {
	p := NewParser()

	r := p.Parse("## 操作\n\n- 煮\n", "dishes/soup/Hot_and-Sour Soup.md")
	require.NotNil(t, r)

	assert.Equal(t, "Hot and Sour Soup", r.Name)
	assert.Equal(t, "hot-and-sour-soup", r.ID)
	assert.Equal(t, CategorySoup, r.Category)
	assert.Equal(t, []string{"煮"}, r.Steps)
	assert.Empty(t, r.Ingredients)
	assert.Empty(t, r.Description)
}

func TestParse_EmptyTitleRejected(t *testing.T) {
	p := NewParser()

	assert.Nil(t, p.Parse("no heading here", ""))

	_, err := p.ParseDocument("no heading here", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyTitle))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "", pe.Path)
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"红烧肉的做法", "红烧肉"},
		{"红烧肉做法（简单版）", "红烧肉"},
		{"可乐鸡翅制作方法", "可乐鸡翅"},
		{"蛋炒饭 制作步骤", "蛋炒饭"},
		{"清蒸鲈鱼 - ", "清蒸鲈鱼"},
		{"麻婆豆腐", "麻婆豆腐"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.raw))
		})
	}
}

func TestParse_CategoryPathTakesPrecedence(t *testing.T) {
	p := NewParser()

	r := p.Parse("# 素汤\n", "dishes/soup/素炒.md")
	require.NotNil(t, r)
	assert.Equal(t, CategorySoup, r.Category)

	r = p.Parse("# 素什锦\n", "dishes/素什锦.md")
	require.NotNil(t, r)
	assert.Equal(t, CategoryVegetarian, r.Category)

	r = p.Parse("# 回锅肉\n", "dishes/回锅肉.md")
	require.NotNil(t, r)
	assert.Equal(t, CategoryMeatDish, r.Category)
}

func TestParse_IngredientMerge(t *testing.T) {
	doc := "# 煮鸡蛋\n\n## 原料\n\n- 鸡蛋\n\n## 计算\n\n- 鸡蛋 3 个\n- 清水 500 毫升\n"

	r := NewParser().Parse(doc, "煮鸡蛋.md")
	require.NotNil(t, r)

	assert.Equal(t, []Ingredient{
		{Name: "鸡蛋", Amount: "3", Unit: UnitPiece, Category: IngredientMeat},
		{Name: "清水", Amount: "500", Unit: UnitMilliliter, Category: IngredientOther},
	}, r.Ingredients)
}

func TestParse_NamesOnlyFallback(t *testing.T) {
	doc := "# 拍黄瓜\n\n## 食材\n\n* 黄瓜\n* 蒜 适量\n\n## 分量\n\n- 随意\n"

	r := NewParser().Parse(doc, "拍黄瓜.md")
	require.NotNil(t, r)

	assert.Equal(t, []Ingredient{
		{Name: "黄瓜", Amount: AmountUnspecified, Unit: UnitUnspecified, Category: IngredientVegetable},
		{Name: "蒜", Amount: AmountUnspecified, Unit: UnitUnspecified, Category: IngredientVegetable},
	}, r.Ingredients)
}

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		namesOnly bool
		want      Ingredient
		ok        bool
	}{
		{"range average", "辣椒 1-2 个", false, Ingredient{"辣椒", "1.5", UnitPiece, IngredientVegetable}, true},
		{"integral range", "土豆 2-4 个", false, Ingredient{"土豆", "3", UnitPiece, IngredientVegetable}, true},
		{"range rounds half up", "土豆 1-1.5 个", false, Ingredient{"土豆", "1.3", UnitPiece, IngredientVegetable}, true},
		{"decimal quantity", "大米 1.5 kg", false, Ingredient{"大米", "1.5", UnitKilogram, IngredientOther}, true},
		{"bullet and aside", "• 牛肉 (里脊) 200克", false, Ingredient{"牛肉", "200", UnitGram, IngredientMeat}, true},
		{"unknown unit forces sentinel", "酱油 2 勺", false, Ingredient{"酱油", AmountUnspecified, UnitUnspecified, IngredientSeasoning}, true},
		{"sentinel marker", "- 盐 适量", false, Ingredient{"盐", AmountUnspecified, UnitUnspecified, IngredientSeasoning}, true},
		{"bare name in names section", "- 葱花", true, Ingredient{"葱花", AmountUnspecified, UnitUnspecified, IngredientVegetable}, true},
		{"bare name dropped in quantities", "- 葱花", false, Ingredient{}, false},
		{"aside only is malformed", "-  （可选）", true, Ingredient{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseIngredientLine(tt.line, tt.namesOnly)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_DifficultyBoundaries(t *testing.T) {
	build := func(ingredients, steps int) string {
		doc := "# 测试菜\n\n## 食材\n\n"
		for i := 0; i < ingredients; i++ {
			doc += "- 食材" + string(rune('A'+i)) + "\n"
		}
		doc += "\n## 步骤\n\n"
		for i := 0; i < steps; i++ {
			doc += "1. 步骤\n"
		}
		return doc
	}

	p := NewParser()

	r := p.Parse(build(5, 5), "a.md")
	require.NotNil(t, r)
	assert.Equal(t, DifficultyEasy, r.Difficulty)
	assert.Equal(t, 25, r.CookingTime)

	r = p.Parse(build(2, 10), "a.md")
	require.NotNil(t, r)
	assert.Equal(t, DifficultyHard, r.Difficulty)
	assert.Equal(t, 50, r.CookingTime)

	r = p.Parse(build(6, 1), "a.md")
	require.NotNil(t, r)
	assert.Equal(t, DifficultyMedium, r.Difficulty)
	assert.Equal(t, 15, r.CookingTime)
}

func TestParse_StepsKeepUnmarkedLines(t *testing.T) {
	doc := "# 凉拌菜\n\n## 做法\n\n10. 第十步\n3、 第三步\n* 星号步骤\n直接写的步骤\n### 小标题\n"

	r := NewParser().Parse(doc, "凉拌菜.md")
	require.NotNil(t, r)
	assert.Equal(t, []string{"第十步", "第三步", "星号步骤", "直接写的步骤"}, r.Steps)
}

func TestParse_NoSections(t *testing.T) {
	r := NewParser().Parse("# 白开水\n\n烧开即可。\n", "drink/白开水.md")
	require.NotNil(t, r)

	assert.Equal(t, CategoryDrink, r.Category)
	assert.NotNil(t, r.Ingredients)
	assert.NotNil(t, r.Steps)
	assert.NotNil(t, r.Images)
	assert.Equal(t, DifficultyEasy, r.Difficulty)
	assert.Equal(t, 15, r.CookingTime)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	doc := "# 炒青菜\r\n\r\n## 食材\r\n\r\n- 青菜 300 g\r\n"

	r := NewParser().Parse(doc, "炒青菜.md")
	require.NotNil(t, r)
	assert.Equal(t, "炒青菜", r.Name)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, UnitGram, r.Ingredients[0].Unit)
}
