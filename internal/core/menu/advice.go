package menu

// GetRecommendations 依人數給出建議文字
func GetRecommendations(peopleCount int) []string {
	var advice []string
	switch {
	case peopleCount <= 2:
		advice = append(advice, "建议2-3道菜，避免浪费")
	case peopleCount <= 4:
		advice = append(advice, "建议3-4道菜，注意荤素搭配")
	default:
		advice = append(advice, "建议4道菜以上，记得准备汤品")
	}
	if peopleCount >= 6 {
		advice = append(advice, "用餐人数较多，建议提前准备")
	}
	return advice
}
