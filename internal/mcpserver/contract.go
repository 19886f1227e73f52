package mcpserver

// Conventions tells LLM clients which values the CRM accepts and how notes
// are written, so their tool calls pass validation.
const Conventions = `# CRM Conventions

## Pipeline stages

Contacts move through exactly these stages (French labels are the wire values):

- ` + "`À contacter`" + ` – new lead, not contacted yet
- ` + "`En discussion`" + ` – conversation ongoing
- ` + "`Devis envoyé`" + ` – a quote was sent
- ` + "`Gagné`" + ` – deal won
- ` + "`Perdu`" + ` – deal lost

Any other value is rejected by ` + "`move_contact`" + `.

## Tasks

- Priority is one of ` + "`high`" + `, ` + "`medium`" + ` (default), ` + "`low`" + `.
- Dates are ` + "`YYYY-MM-DD`" + `.
- ` + "`contactId`" + ` links a task to a contact; it is optional.

## Contact notes

Notes are free text. Append, never rewrite: each entry is its own paragraph
starting with the date in ` + "`[dd/mm/yyyy]`" + ` form, for example:

` + "```" + `
[10/03/2024] Appel avec Thomas : devis validé, démarrage en avril.
` + "```" + `

` + "`append_contact_note`" + ` adds the paragraph separator itself.

## Invoices

- Quotes (` + "`Devis`" + `) have ids ` + "`D-YYYY-NNN`" + `, invoices (` + "`Facture`" + `) ` + "`F-YYYY-NNN`" + `.
- Status is one of ` + "`Brouillon`" + `, ` + "`En attente`" + `, ` + "`Payée`" + `, ` + "`En retard`" + `.
- Amounts are euros.
`
