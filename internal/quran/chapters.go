// Package quran holds chapter metadata and the canonical verse source the
// translation table is aligned against.
package quran

import (
	"strings"
	"unicode"
)

// ChapterCount is the number of chapters in the canonical text
const ChapterCount = 114

// Chapter holds metadata for a single chapter
type Chapter struct {
	Number      int    `json:"number" yaml:"number"`
	Name        string `json:"name" yaml:"name"` // Transliterated name
	EnglishName string `json:"english_name" yaml:"english_name"`
	Verses      int    `json:"verses" yaml:"verses"` // Verse count without a separate invocation verse
}

// chapters lists all chapters in canonical order with standard verse counts.
var chapters = []Chapter{
	{1, "Al-Faatiha", "The Opening", 7},
	{2, "Al-Baqara", "The Cow", 286},
	{3, "Aal-i-Imraan", "The Family of Imraan", 200},
	{4, "An-Nisaa", "The Women", 176},
	{5, "Al-Maaida", "The Table", 120},
	{6, "Al-An'aam", "The Cattle", 165},
	{7, "Al-A'raaf", "The Heights", 206},
	{8, "Al-Anfaal", "The Spoils of War", 75},
	{9, "At-Tawba", "The Repentance", 129},
	{10, "Yunus", "Jonas", 109},
	{11, "Hud", "Hud", 123},
	{12, "Yusuf", "Joseph", 111},
	{13, "Ar-Ra'd", "The Thunder", 43},
	{14, "Ibrahim", "Abraham", 52},
	{15, "Al-Hijr", "The Rock", 99},
	{16, "An-Nahl", "The Bee", 128},
	{17, "Al-Israa", "The Night Journey", 111},
	{18, "Al-Kahf", "The Cave", 110},
	{19, "Maryam", "Mary", 98},
	{20, "Taa-Haa", "Taa-Haa", 135},
	{21, "Al-Anbiyaa", "The Prophets", 112},
	{22, "Al-Hajj", "The Pilgrimage", 78},
	{23, "Al-Muminoon", "The Believers", 118},
	{24, "An-Noor", "The Light", 64},
	{25, "Al-Furqaan", "The Criterion", 77},
	{26, "Ash-Shu'araa", "The Poets", 227},
	{27, "An-Naml", "The Ant", 93},
	{28, "Al-Qasas", "The Stories", 88},
	{29, "Al-Ankaboot", "The Spider", 69},
	{30, "Ar-Room", "The Romans", 60},
	{31, "Luqman", "Luqman", 34},
	{32, "As-Sajda", "The Prostration", 30},
	{33, "Al-Ahzaab", "The Clans", 73},
	{34, "Saba", "Sheba", 54},
	{35, "Faatir", "The Originator", 45},
	{36, "Yaseen", "Yaseen", 83},
	{37, "As-Saaffaat", "Those drawn up in Ranks", 182},
	{38, "Saad", "The letter Saad", 88},
	{39, "Az-Zumar", "The Groups", 75},
	{40, "Ghafir", "The Forgiver", 85},
	{41, "Fussilat", "Explained in detail", 54},
	{42, "Ash-Shura", "Consultation", 53},
	{43, "Az-Zukhruf", "Ornaments of gold", 89},
	{44, "Ad-Dukhaan", "The Smoke", 59},
	{45, "Al-Jaathiya", "Crouching", 37},
	{46, "Al-Ahqaf", "The Dunes", 35},
	{47, "Muhammad", "Muhammad", 38},
	{48, "Al-Fath", "The Victory", 29},
	{49, "Al-Hujuraat", "The Inner Apartments", 18},
	{50, "Qaaf", "The letter Qaaf", 45},
	{51, "Adh-Dhaariyat", "The Winnowing Winds", 60},
	{52, "At-Tur", "The Mount", 49},
	{53, "An-Najm", "The Star", 62},
	{54, "Al-Qamar", "The Moon", 55},
	{55, "Ar-Rahmaan", "The Beneficent", 78},
	{56, "Al-Waaqia", "The Inevitable", 96},
	{57, "Al-Hadid", "The Iron", 29},
	{58, "Al-Mujaadila", "The Pleading Woman", 22},
	{59, "Al-Hashr", "The Exile", 24},
	{60, "Al-Mumtahana", "She that is to be examined", 13},
	{61, "As-Saff", "The Ranks", 14},
	{62, "Al-Jumu'a", "Friday", 11},
	{63, "Al-Munaafiqoon", "The Hypocrites", 11},
	{64, "At-Taghaabun", "Mutual Disillusion", 18},
	{65, "At-Talaaq", "Divorce", 12},
	{66, "At-Tahrim", "The Prohibition", 12},
	{67, "Al-Mulk", "The Sovereignty", 30},
	{68, "Al-Qalam", "The Pen", 52},
	{69, "Al-Haaqqa", "The Reality", 52},
	{70, "Al-Ma'aarij", "The Ascending Stairways", 44},
	{71, "Nooh", "Noah", 28},
	{72, "Al-Jinn", "The Jinn", 28},
	{73, "Al-Muzzammil", "The Enshrouded One", 20},
	{74, "Al-Muddaththir", "The Cloaked One", 56},
	{75, "Al-Qiyaama", "The Resurrection", 40},
	{76, "Al-Insaan", "Man", 31},
	{77, "Al-Mursalaat", "The Emissaries", 50},
	{78, "An-Naba", "The Announcement", 40},
	{79, "An-Naazi'aat", "Those who drag forth", 46},
	{80, "Abasa", "He frowned", 42},
	{81, "At-Takwir", "The Overthrowing", 29},
	{82, "Al-Infitaar", "The Cleaving", 19},
	{83, "Al-Mutaffifin", "Defrauding", 36},
	{84, "Al-Inshiqaaq", "The Splitting Open", 25},
	{85, "Al-Burooj", "The Constellations", 22},
	{86, "At-Taariq", "The Morning Star", 17},
	{87, "Al-A'laa", "The Most High", 19},
	{88, "Al-Ghaashiya", "The Overwhelming", 26},
	{89, "Al-Fajr", "The Dawn", 30},
	{90, "Al-Balad", "The City", 20},
	{91, "Ash-Shams", "The Sun", 15},
	{92, "Al-Lail", "The Night", 21},
	{93, "Ad-Dhuhaa", "The Morning Hours", 11},
	{94, "Ash-Sharh", "The Consolation", 8},
	{95, "At-Tin", "The Fig", 8},
	{96, "Al-Alaq", "The Clot", 19},
	{97, "Al-Qadr", "The Power, Fate", 5},
	{98, "Al-Bayyina", "The Evidence", 8},
	{99, "Az-Zalzala", "The Earthquake", 8},
	{100, "Al-Aadiyaat", "The Chargers", 11},
	{101, "Al-Qaari'a", "The Calamity", 11},
	{102, "At-Takaathur", "Competition", 8},
	{103, "Al-Asr", "The Declining Day, Epoch", 3},
	{104, "Al-Humaza", "The Traducer", 9},
	{105, "Al-Fil", "The Elephant", 5},
	{106, "Quraish", "Quraysh", 4},
	{107, "Al-Maa'un", "Almsgiving", 7},
	{108, "Al-Kawthar", "Abundance", 3},
	{109, "Al-Kaafiroon", "The Disbelievers", 6},
	{110, "An-Nasr", "Divine Support", 3},
	{111, "Al-Masad", "The Palm Fibre", 5},
	{112, "Al-Ikhlaas", "Sincerity", 4},
	{113, "Al-Falaq", "The Dawn", 5},
	{114, "An-Naas", "Mankind", 6},
}

// aliases are alternative transliterations seen in translation documents.
var aliases = map[string]int{
	"Al-Fatiha":   1,
	"Al-Baqarah":  2,
	"Al-Imran":    3,
	"Ali Imran":   3,
	"Al-Maidah":   5,
	"At-Taubah":   9,
	"Bara'ah":     9,
	"Ar-Rum":      30,
	"Ya-Sin":      36,
	"Ad-Duha":     93,
	"Al-Inshirah": 94,
	"Al-Lahab":    111,
	"At-Tauhid":   112,
}

var byName = buildNameIndex()

func buildNameIndex() map[string]int {
	index := make(map[string]int, len(chapters)+len(aliases))
	for _, c := range chapters {
		index[normalizeName(c.Name)] = c.Number
	}
	for name, n := range aliases {
		key := normalizeName(name)
		if _, exists := index[key]; !exists {
			index[key] = n
		}
	}
	return index
}

// Lookup returns the chapter with the given number
func Lookup(n int) (Chapter, bool) {
	if n < 1 || n > len(chapters) {
		return Chapter{}, false
	}
	return chapters[n-1], true
}

// ByName finds a chapter by transliterated name. Matching ignores case,
// punctuation, the definite article and common vowel doublings, so
// "Al-Baqarah", "al baqara" and "Baqara" all resolve to chapter 2.
func ByName(name string) (Chapter, bool) {
	n, ok := byName[normalizeName(name)]
	if !ok {
		return Chapter{}, false
	}
	return Lookup(n)
}

// All returns a copy of the chapter table
func All() []Chapter {
	out := make([]Chapter, len(chapters))
	copy(out, chapters)
	return out
}

var articles = map[string]bool{
	"al": true, "an": true, "ar": true, "as": true, "ash": true, "at": true,
	"az": true, "ad": true, "adh": true, "ath": true,
}

var vowelFolder = strings.NewReplacer("aa", "a", "ee", "i", "ii", "i", "oo", "u", "uu", "u")

func normalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '-' || r == ' ' || r == '\t' || r == '_'
	})
	if len(parts) > 1 && articles[parts[0]] {
		parts = parts[1:]
	}

	var b strings.Builder
	for _, part := range parts {
		for _, r := range part {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
			}
		}
	}

	key := vowelFolder.Replace(b.String())
	if len(key) > 3 && strings.HasSuffix(key, "h") {
		key = key[:len(key)-1]
	}
	return key
}
