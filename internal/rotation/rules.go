package rotation

type Rule struct {
	Crop        string
	Recommended []string
	Avoid       []string
	Reason      string
}

// rules is kept as a slice so that the low-priority backfill walks crops in
// a fixed order.
var rules = []Rule{
	// Cereals
	{
		Crop:        "Wheat",
		Recommended: []string{"Canola", "Pea", "Chickpea", "Soybean", "Grass"},
		Avoid:       []string{"Wheat", "Barley", "Oat"},
		Reason:      "Break cereal disease cycles. Legumes fix nitrogen. Oilseeds provide good rotation.",
	},
	{
		Crop:        "Barley",
		Recommended: []string{"Canola", "Pea", "Chickpea", "Grass", "Potato"},
		Avoid:       []string{"Wheat", "Barley", "Oat"},
		Reason:      "Avoid successive cereals. Legumes and break crops improve soil.",
	},
	{
		Crop:        "Oat",
		Recommended: []string{"Potato", "Sugar Beet", "Pea", "Grass"},
		Avoid:       []string{"Wheat", "Barley", "Oat"},
		Reason:      "Root crops and legumes break pest cycles.",
	},
	{
		Crop:        "Corn",
		Recommended: []string{"Soybean", "Wheat", "Canola", "Sunflower"},
		Avoid:       []string{"Corn", "Sorghum"},
		Reason:      "Legumes restore nitrogen. Small grains and oilseeds provide good rotation.",
	},
	{
		Crop:        "Sorghum",
		Recommended: []string{"Soybean", "Chickpea", "Wheat", "Canola"},
		Avoid:       []string{"Corn", "Sorghum"},
		Reason:      "Legumes fix nitrogen. Avoid successive grass crops.",
	},

	// Oilseeds
	{
		Crop:        "Canola",
		Recommended: []string{"Wheat", "Barley", "Pea"},
		Avoid:       []string{"Canola", "Sunflower"},
		Reason:      "Cereals follow oilseeds well. Avoid club root and sclerotinia buildup.",
	},
	{
		Crop:        "Sunflower",
		Recommended: []string{"Wheat", "Corn", "Soybean"},
		Avoid:       []string{"Sunflower", "Canola"},
		Reason:      "Long rotation needed to prevent disease. Wait 4-5 years before replanting.",
	},
	{
		Crop:        "Soybean",
		Recommended: []string{"Wheat", "Corn", "Barley", "Canola"},
		Avoid:       []string{"Soybean", "Pea", "Chickpea"},
		Reason:      "Good nitrogen fixer. Follow with nitrogen-demanding crops.",
	},

	// Root crops
	{
		Crop:        "Potato",
		Recommended: []string{"Wheat", "Barley", "Grass", "Oat"},
		Avoid:       []string{"Potato", "Sugar Beet", "Carrots"},
		Reason:      "Long rotation (4-5 years) needed. Prevents disease buildup.",
	},
	{
		Crop:        "Sugar Beet",
		Recommended: []string{"Wheat", "Barley", "Grass"},
		Avoid:       []string{"Sugar Beet", "Potato"},
		Reason:      "3-4 year rotation needed. Avoid other root crops.",
	},
	{
		Crop:        "Carrots",
		Recommended: []string{"Wheat", "Barley", "Grass", "Pea"},
		Avoid:       []string{"Carrots", "Parsnips", "Potato"},
		Reason:      "Avoid carrot fly and disease. Wait 3-4 years.",
	},
	{
		Crop:        "Parsnips",
		Recommended: []string{"Wheat", "Barley", "Pea"},
		Avoid:       []string{"Parsnips", "Carrots", "Potato"},
		Reason:      "Similar to carrots. Avoid successive root crops.",
	},
	{
		Crop:        "Red Beet",
		Recommended: []string{"Wheat", "Barley", "Pea"},
		Avoid:       []string{"Red Beet", "Sugar Beet", "Spinach"},
		Reason:      "Avoid beet family diseases.",
	},

	// Legumes
	{
		Crop:        "Pea",
		Recommended: []string{"Wheat", "Barley", "Canola", "Potato"},
		Avoid:       []string{"Pea", "Chickpea", "Soybean"},
		Reason:      "Excellent nitrogen fixer. Follow with high nitrogen demand crops.",
	},
	{
		Crop:        "Chickpea",
		Recommended: []string{"Wheat", "Barley", "Canola"},
		Avoid:       []string{"Chickpea", "Pea", "Soybean"},
		Reason:      "Fixes nitrogen. Avoid successive legumes.",
	},
	{
		Crop:        "Green Beans",
		Recommended: []string{"Wheat", "Corn", "Potato"},
		Avoid:       []string{"Green Beans", "Pea", "Soybean"},
		Reason:      "Good nitrogen fixer. Rotate with high demand crops.",
	},

	// Forage
	{
		Crop:        "Grass",
		Recommended: []string{"Wheat", "Barley", "Potato", "Canola"},
		Avoid:       []string{"Grass", "Corn"},
		Reason:      "Good soil improver. Can be followed by most crops.",
	},

	// Industrial and specialty
	{
		Crop:        "Cotton",
		Recommended: []string{"Wheat", "Corn", "Soybean"},
		Avoid:       []string{"Cotton"},
		Reason:      "Rotate to prevent pest and disease buildup.",
	},
	{
		Crop:        "Spinach",
		Recommended: []string{"Wheat", "Barley", "Pea"},
		Avoid:       []string{"Spinach", "Red Beet", "Sugar Beet"},
		Reason:      "Avoid beet family diseases.",
	},
	{
		Crop:        "Olives",
		Recommended: []string{"Wheat", "Barley", "Grass"},
		Avoid:       []string{"Olives"},
		Reason:      "Permanent crop. Rotation only when replanting.",
	},
	{
		Crop:        "Grapes",
		Recommended: []string{"Wheat", "Barley", "Grass"},
		Avoid:       []string{"Grapes"},
		Reason:      "Permanent crop. Rotation only when replanting.",
	},
	{
		Crop:        "Poplar",
		Recommended: []string{"Wheat", "Grass"},
		Avoid:       []string{"Poplar"},
		Reason:      "Tree crop. Long-term commitment.",
	},
	{
		Crop:        "Sugar Cane",
		Recommended: []string{"Soybean", "Pea", "Grass"},
		Avoid:       []string{"Sugar Cane"},
		Reason:      "Multi-year crop. Legumes restore soil after harvest.",
	},
}

var byCrop = func() map[string]*Rule {
	m := make(map[string]*Rule, len(rules))
	for i := range rules {
		m[rules[i].Crop] = &rules[i]
	}
	return m
}()

var general = []Recommendation{
	{Crop: "Wheat", Priority: PriorityHigh, Reason: "Versatile cereal crop suitable for most conditions"},
	{Crop: "Barley", Priority: PriorityHigh, Reason: "Reliable cereal with good market demand"},
	{Crop: "Canola", Priority: PriorityHigh, Reason: "Excellent break crop with good returns"},
	{Crop: "Pea", Priority: PriorityHigh, Reason: "Nitrogen-fixing legume improves soil"},
	{Crop: "Grass", Priority: PriorityMedium, Reason: "Good soil improver and versatile forage"},
	{Crop: "Oat", Priority: PriorityMedium, Reason: "Good cereal option"},
	{Crop: "Sunflower", Priority: PriorityMedium, Reason: "Profitable oilseed crop"},
	{Crop: "Potato", Priority: PriorityLow, Reason: "High value but requires specific conditions"},
}
