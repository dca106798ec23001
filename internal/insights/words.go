package insights

// DefaultStopwords are dropped before problem-word filtering.
var DefaultStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was", "one",
	"our", "out", "has", "have", "his", "how", "its", "may", "new", "now", "old", "see", "two", "who",
	"did", "get", "got", "let", "say", "she", "too", "use", "way", "this", "that", "with", "they",
	"them", "then", "than", "there", "their", "what", "when", "where", "which", "while", "would",
	"could", "should", "about", "after", "again", "also", "been", "being", "both", "does", "doing",
	"down", "each", "from", "just", "into", "more", "most", "much", "only", "other", "over", "same",
	"some", "such", "very", "were", "will", "your", "yours", "because", "before", "between",
	"during", "here", "itself", "myself", "phone", "really", "even", "though", "however", "although",
}

// DefaultProblemWords is the curated set of complaint vocabulary kept by root-cause extraction.
var DefaultProblemWords = []string{
	// battery
	"dead", "dies", "died", "drain", "drains", "draining", "drained", "overheats", "overheating",
	"heats", "heating", "hot", "charging", "short",
	// camera
	"blurry", "blur", "grainy", "noisy", "noise", "washed", "focus", "shaky", "dark",
	// display
	"dim", "flicker", "flickering", "glare", "scratches", "scratched", "cracked", "crack", "bleeding",
	// performance
	"slow", "lag", "laggy", "lags", "lagging", "freeze", "freezes", "freezing", "frozen", "crash",
	"crashes", "crashing", "hangs", "stutter", "stutters", "sluggish", "restarts", "reboots", "bug",
	"bugs", "buggy", "glitch", "glitches",
	// build
	"cheap", "flimsy", "fragile", "broke", "broken", "breaks", "loose", "plastic", "bends", "creaks",
	// price
	"expensive", "overpriced", "costly", "pricey", "waste", "refund", "return", "returned",
	// general
	"poor", "bad", "terrible", "awful", "horrible", "worst", "worse", "disappointing", "disappointed",
	"useless", "problem", "problems", "issue", "issues", "defective", "faulty", "weak", "low", "high",
}
