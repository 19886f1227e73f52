package persist

import "github.com/starford/crmai/internal/models"

// DefaultAISettings is used until the user saves their own.
func DefaultAISettings() models.AISettings {
	return models.AISettings{Provider: models.ProviderGemini, Model: "gpt-4o-mini"}
}

func defaultAppearance() models.Appearance {
	return models.Appearance{Theme: models.ThemeDark, Font: models.FontInter}
}

// Defaults returns a fresh default dataset. With demo set it carries the
// sample pipeline shown on first launch; otherwise every collection is empty.
func Defaults(demo bool) State {
	s := State{
		Contacts:      []models.Contact{},
		Invoices:      []models.Invoice{},
		Tasks:         []models.Task{},
		Projects:      []models.Project{},
		ChatHistory:   []models.ChatMessage{},
		Subscriptions: []models.Subscription{},
		Appearance:    defaultAppearance(),
		AISettings:    DefaultAISettings(),
	}
	if demo {
		s.Contacts = demoContacts()
		s.Invoices = demoInvoices()
		s.Tasks = demoTasks()
	}
	return s
}

func demoContacts() []models.Contact {
	return []models.Contact{
		{
			ID: "1", Name: "Sophie Martin", Company: "Agence Pixel",
			Email: "sophie@agencepixel.fr", Phone: "+33 6 12 34 56 78",
			Stage: models.StageInDiscussion, Tags: []string{"Design", "Récurrent"},
			Notes:     "Très intéressée par notre offre de refonte UX. Budget autour de 8k€.",
			Revenue:   8000,
			CreatedAt: "2024-01-15", LastContact: "2024-02-20",
			Emails: []models.Email{
				{ID: "e1", Subject: "Suite à notre échange", Date: "2024-02-20", Preview: "Merci pour votre proposition, nous souhaitons aller plus loin...", Direction: models.DirectionReceived},
				{ID: "e2", Subject: "Proposition de devis", Date: "2024-02-18", Preview: "Suite à notre appel, veuillez trouver notre proposition...", Direction: models.DirectionSent},
			},
			Todos: []string{"Envoyer le contrat final", "Programmer kick-off"},
		},
		{
			ID: "2", Name: "Thomas Dupont", Company: "StartupFlow",
			Email: "thomas@startupflow.io", Phone: "+33 6 98 76 54 32",
			Stage: models.StageQuoteSent, Tags: []string{"Dev", "Startup"},
			Notes:     "Besoin d'un MVP en 3 mois. Décision avant fin du mois.",
			Revenue:   15000,
			CreatedAt: "2024-02-01", LastContact: "2024-02-22",
			Emails: []models.Email{
				{ID: "e3", Subject: "Re: Devis développement MVP", Date: "2024-02-22", Preview: "Je reviens vers vous concernant le devis...", Direction: models.DirectionReceived},
			},
			Todos: []string{"Relancer pour décision", "Préparer planning projet"},
		},
		{
			ID: "3", Name: "Marie Leclerc", Company: "BioNature SARL",
			Email: "marie@bionature.fr", Phone: "+33 6 55 44 33 22",
			Stage: models.StageWon, Tags: []string{"Branding", "Récurrent"},
			Notes:     "Cliente fidèle depuis 2 ans. Renouvellement annuel.",
			Revenue:   12000,
			CreatedAt: "2023-03-10", LastContact: "2024-02-10",
			Emails: []models.Email{}, Todos: []string{},
		},
		{
			ID: "4", Name: "Lucas Bernard", Company: "ConsultPro",
			Email: "lucas@consultpro.com", Phone: "+33 6 77 88 99 00",
			Stage: models.StageToContact, Tags: []string{"Conseil"},
			Notes:     "Référé par Sophie Martin. Besoin d'un audit SEO.",
			Revenue:   3000,
			CreatedAt: "2024-02-25",
			Emails:    []models.Email{}, Todos: []string{"Premier appel de découverte"},
		},
		{
			ID: "5", Name: "Emma Rousseau", Company: "MediaVision",
			Email: "emma@mediavision.fr", Phone: "+33 6 11 22 33 44",
			Stage: models.StageLost, Tags: []string{"Vidéo"},
			Notes:     "Budget insuffisant pour notre prestation. À recontacter dans 6 mois.",
			CreatedAt: "2024-01-20", LastContact: "2024-02-05",
			Emails: []models.Email{}, Todos: []string{},
		},
	}
}

func demoInvoices() []models.Invoice {
	return []models.Invoice{
		{
			ID: "F-2024-001", ContactID: "3", ContactName: "Marie Leclerc", Company: "BioNature SARL",
			Type: models.InvoiceTypeInvoice, Amount: 12000, Status: models.InvoiceStatusPaid,
			Date: "2024-02-01", DueDate: "2024-02-28",
			Items: []models.LineItem{
				{Description: "Identité visuelle complète", Quantity: 1, UnitPrice: 8000},
				{Description: "Charte graphique", Quantity: 1, UnitPrice: 2500},
				{Description: "Motion design logo", Quantity: 1, UnitPrice: 1500},
			},
		},
		{
			ID: "D-2024-002", ContactID: "2", ContactName: "Thomas Dupont", Company: "StartupFlow",
			Type: models.InvoiceTypeQuote, Amount: 15000, Status: models.InvoiceStatusPending,
			Date: "2024-02-20", DueDate: "2024-03-05",
			Items: []models.LineItem{
				{Description: "Développement MVP React", Quantity: 1, UnitPrice: 10000},
				{Description: "API Backend Node.js", Quantity: 1, UnitPrice: 4000},
				{Description: "Déploiement & CI/CD", Quantity: 1, UnitPrice: 1000},
			},
		},
		{
			ID: "F-2024-003", ContactID: "1", ContactName: "Sophie Martin", Company: "Agence Pixel",
			Type: models.InvoiceTypeInvoice, Amount: 4500, Status: models.InvoiceStatusOverdue,
			Date: "2024-01-15", DueDate: "2024-02-15",
			Items: []models.LineItem{
				{Description: "Audit UX / Wireframes", Quantity: 1, UnitPrice: 3000},
				{Description: "Maquettes Figma (10 écrans)", Quantity: 1, UnitPrice: 1500},
			},
		},
	}
}

func demoTasks() []models.Task {
	return []models.Task{
		{ID: "t1", Text: "Relancer Thomas Dupont pour décision sur devis", ContactID: "2", Priority: models.PriorityHigh, DueDate: "2024-02-28"},
		{ID: "t2", Text: "Envoyer facture de relance à Agence Pixel", ContactID: "1", Priority: models.PriorityHigh, DueDate: "2024-02-26"},
		{ID: "t3", Text: "Premier appel de découverte avec Lucas Bernard", ContactID: "4", Priority: models.PriorityMedium, DueDate: "2024-03-01"},
		{ID: "t4", Text: "Préparer proposition pour renouvellement BioNature", Done: true, ContactID: "3", Priority: models.PriorityMedium, DueDate: "2024-02-10"},
	}
}
