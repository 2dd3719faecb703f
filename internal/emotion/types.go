package emotion

// Emotion 是固定的情绪类别枚举。
// 超出枚举范围的值一律拒绝。
type Emotion string

const (
	EmotionJoy     Emotion = "joy"
	EmotionSadness Emotion = "sadness"
	EmotionAnger   Emotion = "anger"
	EmotionWorry   Emotion = "worry"
	EmotionProud   Emotion = "proud"
	EmotionUpset   Emotion = "upset"
)

// AllEmotions 按固定顺序列出全部类别，统计接口用它来补零。
var AllEmotions = []Emotion{
	EmotionJoy, EmotionSadness, EmotionAnger,
	EmotionWorry, EmotionProud, EmotionUpset,
}

// Valid 判断类别是否在枚举内。
func (e Emotion) Valid() bool {
	switch e {
	case EmotionJoy, EmotionSadness, EmotionAnger, EmotionWorry, EmotionProud, EmotionUpset:
		return true
	}
	return false
}

// Expression 是表达极性。
type Expression string

const (
	ExpressionPositive Expression = "positive"
	ExpressionNeutral  Expression = "neutral"
	ExpressionNegative Expression = "negative"
)

// Valid 判断极性是否在枚举内。
func (e Expression) Valid() bool {
	switch e {
	case ExpressionPositive, ExpressionNeutral, ExpressionNegative:
		return true
	}
	return false
}

// Visibility 是记录的可见级别。
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityRestricted Visibility = "restricted"
)

// Valid 判断可见级别是否在枚举内。
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityRestricted:
		return true
	}
	return false
}
