package filter

// TopicDictionary maps a topic key to its expanded keyword set. Word
// matching is case-insensitive and Unicode word-boundary aware; substring
// matches (e.g. "ai" inside "paint") are never accepted.
var TopicDictionary = map[string][]string{
	"ai": {
		"ai", "artificial intelligence", "machine learning", "llm", "gpt",
		"chatgpt", "gemini", "claude", "neural network", "transformer",
		"deep learning", "generative ai",
	},
	"tech": {
		"tech", "technology", "software", "hardware", "gadget", "startup",
		"silicon valley", "app", "device", "innovation", "semiconductor",
	},
	"crypto": {
		"crypto", "cryptocurrency", "bitcoin", "ethereum", "blockchain",
		"defi", "nft", "token", "web3", "stablecoin", "altcoin",
	},
	"startup": {
		"startup", "founder", "venture capital", "seed round", "series a",
		"series b", "unicorn", "incubator", "accelerator", "pitch deck",
		"bootstrapped",
	},
	"gaming": {
		"gaming", "video game", "esports", "playstation", "xbox", "nintendo",
		"steam", "console", "game studio", "multiplayer", "game engine",
	},
	"cricket": {
		"cricket", "ipl", "test match", "odi", "t20", "wicket", "batsman",
		"bowler", "world cup", "bcci", "cricketer",
	},
	"finance": {
		"finance", "stock market", "investment", "banking", "mutual fund",
		"interest rate", "inflation", "recession", "portfolio", "hedge fund",
		"equity",
	},
	"sports": {
		"sports", "football", "basketball", "olympics", "tournament",
		"championship", "athlete", "league", "match", "stadium", "coach",
	},
	"politics": {
		"politics", "election", "parliament", "senate", "president",
		"prime minister", "legislation", "policy", "campaign", "vote",
		"government",
	},
	"health": {
		"health", "healthcare", "medicine", "vaccine", "hospital", "disease",
		"clinical trial", "mental health", "nutrition", "wellness", "surgery",
	},
	"entertainment": {
		"entertainment", "movie", "film", "celebrity", "music", "box office",
		"streaming", "television", "hollywood", "bollywood", "concert",
	},
	"education": {
		"education", "school", "university", "student", "curriculum",
		"scholarship", "exam", "college", "classroom", "e-learning",
		"academic",
	},
	"auto": {
		"auto", "automobile", "electric vehicle", "ev", "car", "sedan",
		"suv", "automaker", "self-driving", "hybrid", "motorcycle",
	},
	"travel": {
		"travel", "tourism", "airline", "flight", "hotel", "vacation",
		"destination", "passport", "itinerary", "cruise", "backpacking",
	},
	"weather": {
		"weather", "forecast", "storm", "hurricane", "heatwave", "rainfall",
		"monsoon", "temperature", "climate", "cyclone", "drought",
	},
	"realestate": {
		"realestate", "real estate", "property", "housing market", "mortgage",
		"rent", "landlord", "apartment", "homebuyer", "commercial property",
		"realtor", "zoning",
	},
	"jobs": {
		"jobs", "employment", "hiring", "layoff", "recruitment", "resume",
		"job market", "unemployment", "salary", "workforce", "career",
	},
	"mobile": {
		"mobile", "smartphone", "android", "ios", "iphone", "app store",
		"mobile app", "5g", "tablet", "mobile os", "handset",
	},
	"laptop": {
		"laptop", "notebook", "chromebook", "ultrabook", "macbook",
		"processor", "ssd", "gpu", "windows laptop", "battery life",
		"laptop review",
	},
}
