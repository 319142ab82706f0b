// Package catalog holds the static reference data rendered by the screens.
package catalog

// Companion is a read-only catalog entry. The id is what the chat endpoint
// keys on.
type Companion struct {
	ID          int
	DisplayName string
	Description string
}

// Companions returns the default companion roster.
func Companions() []Companion {
	return []Companion{
		{ID: 1, DisplayName: "👩 Sophia - The Passionate", Description: "A caring soul with deep brown eyes"},
		{ID: 2, DisplayName: "👩 Emma - The Caring", Description: "Sweet and nurturing with a bright smile"},
		{ID: 3, DisplayName: "👩 Isabella - The Confident", Description: "Strong and independent with piercing green eyes"},
		{ID: 4, DisplayName: "👨 James - The Romantic", Description: "Charming gentleman with a warm heart"},
		{ID: 5, DisplayName: "👩 Alexa - The Playful", Description: "Fun-loving spirit with infectious laughter"},
	}
}

// ByID looks a companion up in the roster.
func ByID(id int) (Companion, bool) {
	for _, c := range Companions() {
		if c.ID == id {
			return c, true
		}
	}
	return Companion{}, false
}

// HistoryEntry is a placeholder row on the chats screen. Transcripts are not
// persisted, so these are static.
type HistoryEntry struct {
	Name        string
	LastMessage string
	Age         string
}

// History returns the chats-screen placeholder rows.
func History() []HistoryEntry {
	return []HistoryEntry{
		{Name: "👩 Sophia", LastMessage: "Hey there! How was your day?", Age: "2 hours ago"},
		{Name: "👩 Emma", LastMessage: "I missed talking with you!", Age: "Yesterday"},
		{Name: "👩 Isabella", LastMessage: "You always make me smile 😊", Age: "2 days ago"},
		{Name: "👨 James", LastMessage: "Looking forward to our next chat", Age: "3 days ago"},
		{Name: "👩 Alexa", LastMessage: "Ready for some fun? 😉", Age: "1 week ago"},
	}
}

// SettingsItem is a row on the settings screen. Activating it only posts the
// Status line; there is no persisted preference store.
type SettingsItem struct {
	Title       string
	Description string
	Status      string
}

// SettingsSection groups settings rows under a heading.
type SettingsSection struct {
	Title string
	Items []SettingsItem
}

// Settings returns the settings screen content.
func Settings() []SettingsSection {
	return []SettingsSection{
		{Title: "💖 Preferences", Items: []SettingsItem{
			{Title: "Companion Gender", Description: "Both Male & Female", Status: "Gender preference: Currently set to 'Both'"},
			{Title: "Conversation Style", Description: "Romantic & Caring", Status: "Conversation style: Currently set to 'Romantic & Caring'"},
			{Title: "Language", Description: "English", Status: "Language: Currently set to 'English'"},
		}},
		{Title: "📱 App Settings", Items: []SettingsItem{
			{Title: "Notifications", Description: "Enabled", Status: "Notifications: Currently enabled"},
			{Title: "Dark Mode", Description: "Disabled", Status: "Dark mode: Currently disabled"},
			{Title: "Chat Backup", Description: "Auto-save conversations", Status: "Chat backup: Auto-save enabled"},
		}},
		{Title: "ℹ️ About", Items: []SettingsItem{
			{Title: "Version", Description: "RedVelvet Mobile v1.0", Status: "Version: RedVelvet Mobile v1.0"},
			{Title: "Privacy Policy", Description: "View our privacy commitment", Status: "Privacy Policy: View at redvelvet.com/privacy"},
			{Title: "Terms of Service", Description: "Read terms and conditions", Status: "Terms of Service: View at redvelvet.com/terms"},
		}},
	}
}

// DiamondPackage is a purchase option on the premium screen. Purchasing is a
// stub; activation posts a status line only.
type DiamondPackage struct {
	Name        string
	Diamonds    string
	Price       string
	Description string
}

// Packages returns the premium screen diamond packages.
func Packages() []DiamondPackage {
	return []DiamondPackage{
		{Name: "Starter Pack", Diamonds: "💎 100 Diamonds", Price: "$2.99", Description: "Perfect for getting started"},
		{Name: "Popular Pack", Diamonds: "💎 500 Diamonds", Price: "$9.99", Description: "Most popular choice"},
		{Name: "Premium Pack", Diamonds: "💎 1000 Diamonds", Price: "$14.99", Description: "Best value for money"},
		{Name: "Ultimate Pack", Diamonds: "💎 2500 Diamonds", Price: "$19.99", Description: "Maximum savings"},
	}
}

// Subscription returns the monthly plan shown under the packages.
func Subscription() DiamondPackage {
	return DiamondPackage{
		Name:        "Monthly Premium",
		Diamonds:    "Unlimited Diamonds",
		Price:       "$14.99/month",
		Description: "Cancel anytime",
	}
}
