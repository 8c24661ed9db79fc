package agenttools

import "github.com/jrsteele09/go-assistant-auth/services"

// Catalog returns every tool the assistant knows about, before gating.
func Catalog() []Descriptor {
	return []Descriptor{
		// Service-independent
		{Name: "service-status", Description: "Check which services are currently connected and active"},
		{Name: "identity-inspector", Description: "List the user's linked identities from their session"},

		// Microsoft
		{Name: "microsoft-calendar-read", Description: "Read Outlook calendar events", Service: services.Microsoft},
		{Name: "microsoft-calendar-write", Description: "Create or update Outlook calendar events", Service: services.Microsoft},
		{Name: "microsoft-mail-read", Description: "Read Outlook mail", Service: services.Microsoft},
		{Name: "microsoft-mail-write", Description: "Send Outlook mail", Service: services.Microsoft},
		{Name: "microsoft-files-list", Description: "List OneDrive files", Service: services.Microsoft},
		{Name: "microsoft-files-read", Description: "Read OneDrive file contents", Service: services.Microsoft},
		{Name: "microsoft-files-write", Description: "Write OneDrive files", Service: services.Microsoft},

		// Google
		{Name: "google-mail-read", Description: "Read Gmail messages", Service: services.Google},
		{Name: "google-mail-write", Description: "Send Gmail messages", Service: services.Google},
		{Name: "google-calendar-read", Description: "Read Google Calendar events", Service: services.Google},
		{Name: "google-calendar-write", Description: "Create or update Google Calendar events", Service: services.Google},
		{Name: "google-drive-list", Description: "List Google Drive files", Service: services.Google},
		{Name: "google-drive-read", Description: "Read Google Drive file contents", Service: services.Google},
		{Name: "google-drive-write", Description: "Write Google Drive files", Service: services.Google},

		// Salesforce
		{Name: "salesforce-query", Description: "Run SOQL queries against CRM records", Service: services.Salesforce},
		{Name: "salesforce-create", Description: "Create CRM records", Service: services.Salesforce},
		{Name: "salesforce-search", Description: "Text search across CRM objects", Service: services.Salesforce},
	}
}
