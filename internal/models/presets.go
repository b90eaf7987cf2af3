package models

// PresetWord is a starter vocabulary entry seeded into a new profile
type PresetWord struct {
	Word        string
	Translation string
	Example     string
}

// PresetWords is the starter list for early learners: food, animals,
// family, actions, school and nature.
var PresetWords = []PresetWord{
	{Word: "apple", Translation: "苹果", Example: "I eat an apple."},
	{Word: "banana", Translation: "香蕉", Example: "The banana is yellow."},
	{Word: "cake", Translation: "蛋糕", Example: "I like chocolate cake."},
	{Word: "milk", Translation: "牛奶", Example: "I drink milk every day."},
	{Word: "bread", Translation: "面包", Example: "I have bread for breakfast."},
	{Word: "egg", Translation: "鸡蛋", Example: "I cook an egg."},
	{Word: "fish", Translation: "鱼", Example: "The fish swims in water."},
	{Word: "rice", Translation: "米饭", Example: "We eat rice for dinner."},
	{Word: "water", Translation: "水", Example: "Water is good for you."},
	{Word: "juice", Translation: "果汁", Example: "Orange juice is sweet."},
	{Word: "cat", Translation: "猫", Example: "The cat is cute."},
	{Word: "dog", Translation: "狗", Example: "My dog is friendly."},
	{Word: "bird", Translation: "鸟", Example: "The bird can fly."},
	{Word: "rabbit", Translation: "兔子", Example: "The rabbit is white."},
	{Word: "elephant", Translation: "大象", Example: "The elephant is big."},
	{Word: "lion", Translation: "狮子", Example: "The lion is strong."},
	{Word: "bear", Translation: "熊", Example: "The bear likes honey."},
	{Word: "tiger", Translation: "老虎", Example: "The tiger has stripes."},
	{Word: "monkey", Translation: "猴子", Example: "The monkey climbs trees."},
	{Word: "duck", Translation: "鸭子", Example: "The duck swims in the pond."},
	{Word: "mom", Translation: "妈妈", Example: "I love my mom."},
	{Word: "dad", Translation: "爸爸", Example: "Dad reads me stories."},
	{Word: "baby", Translation: "宝宝", Example: "The baby is sleeping."},
	{Word: "sister", Translation: "姐姐/妹妹", Example: "My sister is kind."},
	{Word: "brother", Translation: "哥哥/弟弟", Example: "I play with my brother."},
	{Word: "grandma", Translation: "奶奶", Example: "Grandma bakes cookies."},
	{Word: "grandpa", Translation: "爷爷", Example: "Grandpa tells stories."},
	{Word: "run", Translation: "跑", Example: "I run fast."},
	{Word: "jump", Translation: "跳", Example: "I can jump high."},
	{Word: "walk", Translation: "走", Example: "We walk to school."},
	{Word: "sit", Translation: "坐", Example: "Please sit down."},
	{Word: "stand", Translation: "站", Example: "Stand up straight."},
	{Word: "eat", Translation: "吃", Example: "I eat an apple."},
	{Word: "drink", Translation: "喝", Example: "Drink some water."},
	{Word: "sleep", Translation: "睡觉", Example: "I sleep at night."},
	{Word: "play", Translation: "玩", Example: "Let's play together."},
	{Word: "read", Translation: "读", Example: "I read a book."},
	{Word: "school", Translation: "学校", Example: "I go to school."},
	{Word: "teacher", Translation: "老师", Example: "My teacher is nice."},
	{Word: "book", Translation: "书", Example: "I have a book."},
	{Word: "pen", Translation: "笔", Example: "I write with a pen."},
	{Word: "desk", Translation: "桌子", Example: "The desk is clean."},
	{Word: "chair", Translation: "椅子", Example: "Sit on the chair."},
	{Word: "bag", Translation: "书包", Example: "My bag is heavy."},
	{Word: "pencil", Translation: "铅笔", Example: "Draw with a pencil."},
	{Word: "sun", Translation: "太阳", Example: "The sun is bright."},
	{Word: "moon", Translation: "月亮", Example: "The moon shines at night."},
	{Word: "star", Translation: "星星", Example: "Stars twinkle in the sky."},
	{Word: "tree", Translation: "树", Example: "The tree is tall."},
	{Word: "flower", Translation: "花", Example: "The flower smells good."},
	{Word: "grass", Translation: "草", Example: "Green grass grows."},
	{Word: "sky", Translation: "天空", Example: "The sky is blue."},
	{Word: "cloud", Translation: "云", Example: "White clouds float."},
	{Word: "rain", Translation: "雨", Example: "Rain makes plants grow."},
	{Word: "snow", Translation: "雪", Example: "Snow is white and cold."},
}

// ToWord converts a preset into an uncategorized Word
func (p PresetWord) ToWord() Word {
	return Word{
		Word:        p.Word,
		Translation: p.Translation,
		Example:     p.Example,
		Categories:  []string{UncategorizedID},
	}
}
