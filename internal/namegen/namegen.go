package namegen

import (
	"fmt"
	"strings"

	"github.com/synthline/firmforge/internal/randsrc"
)

// Generator produces deterministic person, company and contact data per
// locale. Every draw routes through the run's PRNG so that (seed,
// config) fixes the output; that requirement rules out faker libraries
// with their own internal random state.
type Generator struct {
	rng *randsrc.Source
}

// New creates a Generator backed by the run's PRNG.
func New(rng *randsrc.Source) *Generator {
	return &Generator{rng: rng}
}

type localePool struct {
	first []string
	last  []string
	phone string // '#' is a random digit
}

// Name pools are romanized where the native script is non-Latin; the
// original system transliterated on the fly.
var locales = map[string]localePool{
	"en_US": {
		first: []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Thomas", "Jessica"},
		last:  []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Anderson", "Taylor", "Thomas", "Moore", "Jackson", "White"},
		phone: "+1-###-###-####",
	},
	"en_CA": {
		first: []string{"Liam", "Olivia", "Noah", "Emma", "Jack", "Charlotte", "Benjamin", "Amelia", "Lucas", "Sophia", "Ethan", "Chloe"},
		last:  []string{"Tremblay", "Roy", "MacDonald", "Gagnon", "Campbell", "Wilson", "Stewart", "Cote", "Leblanc", "Fraser", "Morin", "Grant"},
		phone: "+1-###-###-####",
	},
	"en_GB": {
		first: []string{"Oliver", "Amelia", "George", "Isla", "Harry", "Ava", "Jacob", "Emily", "Charlie", "Sophie", "Oscar", "Grace"},
		last:  []string{"Jones", "Taylor", "Evans", "Thomas", "Roberts", "Walker", "Wright", "Robinson", "Hughes", "Edwards", "Green", "Hall"},
		phone: "+44 #### ######",
	},
	"en_AU": {
		first: []string{"Oliver", "Charlotte", "William", "Mia", "Jack", "Isla", "Thomas", "Ruby", "Lachlan", "Matilda", "Henry", "Zoe"},
		last:  []string{"Kelly", "Ryan", "Walsh", "Harris", "Mitchell", "Carter", "Bennett", "Wood", "Murray", "Cameron", "Reid", "Hunter"},
		phone: "+61 # #### ####",
	},
	"es_MX": {
		first: []string{"Jose", "Maria", "Juan", "Guadalupe", "Luis", "Veronica", "Carlos", "Alejandra", "Jorge", "Fernanda", "Miguel", "Gabriela"},
		last:  []string{"Hernandez", "Garcia", "Martinez", "Lopez", "Gonzalez", "Perez", "Rodriguez", "Sanchez", "Ramirez", "Cruz", "Flores", "Gomez"},
		phone: "+52 ## #### ####",
	},
	"es_CO": {
		first: []string{"Santiago", "Valentina", "Sebastian", "Camila", "Mateo", "Isabella", "Nicolas", "Mariana", "Daniel", "Gabriela", "Andres", "Sara"},
		last:  []string{"Rodriguez", "Gomez", "Gonzalez", "Martinez", "Garcia", "Lopez", "Hernandez", "Diaz", "Torres", "Vargas", "Castro", "Rojas"},
		phone: "+57 ### ### ####",
	},
	"pt_BR": {
		first: []string{"Miguel", "Alice", "Arthur", "Sophia", "Bernardo", "Helena", "Heitor", "Valentina", "Davi", "Laura", "Gabriel", "Manuela"},
		last:  []string{"Silva", "Santos", "Oliveira", "Souza", "Lima", "Pereira", "Ferreira", "Costa", "Almeida", "Carvalho", "Gomes", "Ribeiro"},
		phone: "+55 ## #####-####",
	},
	"de_DE": {
		first: []string{"Maximilian", "Sophie", "Alexander", "Marie", "Paul", "Hannah", "Leon", "Emilia", "Lukas", "Anna", "Felix", "Lena"},
		last:  []string{"Muller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann", "Koch", "Bauer"},
		phone: "+49 ### #######",
	},
	"fr_FR": {
		first: []string{"Gabriel", "Jade", "Leo", "Louise", "Raphael", "Emma", "Arthur", "Alice", "Louis", "Lina", "Jules", "Rose"},
		last:  []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent"},
		phone: "+33 # ## ## ## ##",
	},
	"zh_CN": {
		first: []string{"Wei", "Fang", "Jun", "Min", "Lei", "Yan", "Qiang", "Jing", "Tao", "Li", "Hao", "Xiu"},
		last:  []string{"Wang", "Li", "Zhang", "Liu", "Chen", "Yang", "Huang", "Zhao", "Wu", "Zhou", "Xu", "Sun"},
		phone: "+86 ### #### ####",
	},
	"ja_JP": {
		first: []string{"Haruto", "Yui", "Sota", "Aoi", "Yuto", "Hina", "Riku", "Sakura", "Kaito", "Mio", "Ren", "Akari"},
		last:  []string{"Sato", "Suzuki", "Takahashi", "Tanaka", "Watanabe", "Ito", "Yamamoto", "Nakamura", "Kobayashi", "Kato", "Yoshida", "Yamada"},
		phone: "+81 ##-####-####",
	},
	"ko_KR": {
		first: []string{"Minjun", "Seoyeon", "Jiho", "Jiwoo", "Hajun", "Seoyun", "Doyun", "Haeun", "Siwoo", "Yuna", "Jun", "Soyul"},
		last:  []string{"Kim", "Lee", "Park", "Choi", "Jung", "Kang", "Cho", "Yoon", "Jang", "Lim", "Han", "Shin"},
		phone: "+82 ##-####-####",
	},
}

var companyWords = []string{
	"Apex", "Vertex", "Summit", "Pioneer", "Horizon", "Keystone", "Beacon",
	"Cascade", "Meridian", "Atlas", "Vanguard", "Sterling", "Harbor",
	"Crestline", "Northbridge", "Ironwood", "Bluewater", "Stonegate",
	"Lakeshore", "Redwood", "Silverline", "Granite", "Fairview", "Oakmont",
}

var companySuffixes = []string{
	"Inc", "LLC", "Group", "Ltd", "PLC", "and Sons", "Holdings", "Partners",
}

// Person returns a (first, last) pair for the locale. Unknown locales
// fall back to en_US.
func (g *Generator) Person(locale string) (string, string) {
	pool, ok := locales[locale]
	if !ok {
		pool = locales["en_US"]
	}
	first := pool.first[g.rng.IntInRange(0, len(pool.first)-1)]
	last := pool.last[g.rng.IntInRange(0, len(pool.last)-1)]
	return first, last
}

// Phone returns a phone number in the locale's format.
func (g *Generator) Phone(locale string) string {
	pool, ok := locales[locale]
	if !ok {
		pool = locales["en_US"]
	}
	var b strings.Builder
	for _, ch := range pool.phone {
		if ch == '#' {
			b.WriteByte(byte('0' + g.rng.IntInRange(0, 9)))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// Email derives the original scheme: first-name initials + lowercased
// last name + the trailing digits of the consultant id.
func (g *Generator) Email(first, last, consultantID, domainName string) string {
	var initials strings.Builder
	for _, part := range strings.Fields(first) {
		initials.WriteString(strings.ToLower(part[:1]))
	}
	suffix := consultantID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	local := initials.String() + strings.ToLower(strings.ReplaceAll(last, " ", "")) + suffix
	return fmt.Sprintf("%s@%s", asciiFold(local), domainName)
}

// Company returns a two-part client company name.
func (g *Generator) Company() string {
	word := companyWords[g.rng.IntInRange(0, len(companyWords)-1)]
	suffix := companySuffixes[g.rng.IntInRange(0, len(companySuffixes)-1)]
	return word + " " + suffix
}

var foldTable = map[rune]string{
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ç': "c", 'ñ': "n", 'ß': "ss",
}

// asciiFold strips diacritics so that generated addresses stay ASCII.
func asciiFold(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if repl, ok := foldTable[r]; ok {
			b.WriteString(repl)
			continue
		}
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
