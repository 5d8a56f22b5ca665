package rbac

// Ability is a fine-grained permission tag of the form resource.action.
// The core matches tags exactly and never interprets the split.
type Ability string

const (
	// Invoice abilities
	AbilityInvoicesView   Ability = "invoices.view"
	AbilityInvoicesCreate Ability = "invoices.create"
	AbilityInvoicesEdit   Ability = "invoices.edit"
	AbilityInvoicesSend   Ability = "invoices.send"
	AbilityInvoicesExport Ability = "invoices.export"
	AbilityInvoicesDelete Ability = "invoices.delete"

	// Client abilities
	AbilityClientsView   Ability = "clients.view"
	AbilityClientsCreate Ability = "clients.create"
	AbilityClientsEdit   Ability = "clients.edit"
	AbilityClientsDelete Ability = "clients.delete"

	// Item abilities
	AbilityItemsView   Ability = "items.view"
	AbilityItemsCreate Ability = "items.create"
	AbilityItemsEdit   Ability = "items.edit"
	AbilityItemsDelete Ability = "items.delete"

	// Layout abilities
	AbilityLayoutsView   Ability = "layouts.view"
	AbilityLayoutsCreate Ability = "layouts.create"
	AbilityLayoutsEdit   Ability = "layouts.edit"
	AbilityLayoutsDelete Ability = "layouts.delete"

	// User management abilities
	AbilityUsersView       Ability = "users.view"
	AbilityUsersCreate     Ability = "users.create"
	AbilityUsersEdit       Ability = "users.edit"
	AbilityUsersDelete     Ability = "users.delete"
	AbilityUsersChangeRole Ability = "users.changeRole"

	// Business abilities
	AbilityBusinessView Ability = "business.view"
	AbilityBusinessEdit Ability = "business.edit"
)
