package mocksite

// DefaultDictionary returns a handful of common Singlish words with their Sinhala spelling.
func DefaultDictionary() map[string]string {
	return map[string]string{
		"aayuboovan": "ආයුබෝවන්",
		"adha":       "අද",
		"adu":        "අඩු",
		"api":        "අපි",
		"eka":        "එක",
		"ekee":       "එකේ",
		"jiivithee":  "ජීවිතේ",
		"mama":       "මම",
		"Mama":       "මම",
		"mata":       "මට",
		"namuth":     "නමුත්",
		"oyaa":       "ඔයා",
		"oyaata":     "ඔයාට",
		"samahara":   "සමහර",
		"suba":       "සුබ",
		"surYAyaa":   "සූර්යයා",
		"udaeesanak": "උදෑසනක්",
	}
}
