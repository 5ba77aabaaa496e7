package roles

import (
	"sort"

	"github.com/google/uuid"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// Role codes for the default contract roles.
const (
	// Retail banking
	CodeOwner          = "OWNER"
	CodeJointOwner     = "JOINT_OWNER"
	CodeAuthorizedUser = "AUTHORIZED_USER"
	CodeViewer         = "VIEWER"
	CodeBeneficiary    = "BENEFICIARY"

	// Corporate banking
	CodeAccountAdministrator = "ACCOUNT_ADMINISTRATOR"
	CodeTransactionManager   = "TRANSACTION_MANAGER"
	CodeApprover             = "APPROVER"
	CodeInitiator            = "INITIATOR"
	CodeInquiryUser          = "INQUIRY_USER"

	// Lending
	CodeBorrower           = "BORROWER"
	CodeCoBorrower         = "CO_BORROWER"
	CodeGuarantor          = "GUARANTOR"
	CodeCollateralProvider = "COLLATERAL_PROVIDER"
	CodeLoanServicer       = "LOAN_SERVICER"

	// Legal & fiduciary
	CodePowerOfAttorney = "POWER_OF_ATTORNEY"
	CodeTrustee         = "TRUSTEE"
	CodeExecutor        = "EXECUTOR"
	CodeLegalGuardian   = "LEGAL_GUARDIAN"

	// Investment & wealth management
	CodeInvestmentAdvisor = "INVESTMENT_ADVISOR"
	CodePortfolioManager  = "PORTFOLIO_MANAGER"
	CodeCustodian         = "CUSTODIAN"
)

// Priority levels for the default roles. Higher wins during conflict
// resolution; ties are broken by role name downstream. Priorities are
// assigned by business tier: ownership/administration, then
// operational, then approval/initiation, then view/beneficiary.
const (
	PriorityOwner                = 100
	PriorityAccountAdministrator = 95
	PriorityPowerOfAttorney      = 90
	PriorityExecutor             = 85
	PriorityJointOwner           = 80
	PriorityTrustee              = 75
	PriorityBorrower             = 70
	PriorityCoBorrower           = 65
	PriorityInvestmentAdvisor    = 65
	PriorityTransactionManager   = 60
	PriorityPortfolioManager     = 60
	PriorityAuthorizedUser       = 55
	PriorityApprover             = 50
	PriorityGuarantor            = 45
	PriorityInitiator            = 40
	PriorityBeneficiary          = 35
	PriorityLoanServicer         = 35
	PriorityInquiryUser          = 30
	PriorityCollateralProvider   = 25
	PriorityLegalGuardian        = 20
	PriorityCustodian            = 15
	PriorityViewer               = 10
)

// Category groups default roles for easier management.
type Category string

const (
	CategoryRetailBanking    Category = "RETAIL_BANKING"
	CategoryCorporateBanking Category = "CORPORATE_BANKING"
	CategoryLending          Category = "LENDING"
	CategoryLegalFiduciary   Category = "LEGAL_FIDUCIARY"
	CategoryInvestmentWealth Category = "INVESTMENT_WEALTH"
)

// RoleID derives the deterministic identifier for a role code. The same
// code always yields the same id across processes, so catalog roles and
// contract references agree without coordination.
func RoleID(code string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(code))
}

// Catalog is the static registry of default contract roles. Roles are
// pure, pre-built values with no I/O; lookups are read-only and safe for
// unlimited concurrent use.
type Catalog struct {
	byCode     map[string]models.ContractRole
	byCategory map[Category][]models.ContractRole
	all        []models.ContractRole
}

// NewCatalog builds the default role registry.
func NewCatalog() *Catalog {
	c := &Catalog{
		byCode:     make(map[string]models.ContractRole),
		byCategory: make(map[Category][]models.ContractRole),
	}
	for _, def := range defaultRoleDefs() {
		c.byCode[def.role.RoleCode] = def.role
		c.byCategory[def.category] = append(c.byCategory[def.category], def.role)
		c.all = append(c.all, def.role)
	}
	sortRoles(c.all)
	for _, rs := range c.byCategory {
		sortRoles(rs)
	}
	return c
}

// ByCode returns the default role for the given code.
func (c *Catalog) ByCode(code string) (models.ContractRole, bool) {
	r, ok := c.byCode[code]
	return r, ok
}

// All returns every default role, sorted by priority (highest first)
// then name.
func (c *Catalog) All() []models.ContractRole {
	return append([]models.ContractRole(nil), c.all...)
}

// ByCategory returns the default roles in the given category, sorted by
// priority then name.
func (c *Catalog) ByCategory(cat Category) []models.ContractRole {
	return append([]models.ContractRole(nil), c.byCategory[cat]...)
}

func sortRoles(rs []models.ContractRole) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority > rs[j].Priority
		}
		return rs[i].Name < rs[j].Name
	})
}

type roleDef struct {
	category Category
	role     models.ContractRole
}

func defaultRole(code, name, description string, priority int, perms models.ContractPermissions, productTypes ...string) models.ContractRole {
	return models.ContractRole{
		RoleID:                 RoleID(code),
		RoleCode:               code,
		Name:                   name,
		Description:            description,
		IsDefault:              true,
		IsActive:               true,
		Priority:               priority,
		Permissions:            perms,
		ApplicableProductTypes: models.NewStringSet(productTypes...),
	}
}

func defaultRoleDefs() []roleDef {
	return []roleDef{
		// ---------- Retail banking ----------
		{CategoryRetailBanking, defaultRole(CodeOwner, "Owner",
			"Full ownership and control over the product and contract",
			PriorityOwner,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanDelete: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "CLOSE_ACCOUNT",
					"MODIFY_SETTINGS", "ADD_AUTHORIZED_USER", "REMOVE_AUTHORIZED_USER",
					"VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS", "SET_LIMITS",
					"FREEZE_ACCOUNT", "UNFREEZE_ACCOUNT", "CHANGE_PIN",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "SETTINGS",
					"AUTHORIZED_USERS", "LIMITS", "NOTIFICATIONS", "DOCUMENTS",
				),
			})},
		{CategoryRetailBanking, defaultRole(CodeJointOwner, "Joint Owner",
			"Shared ownership with specific limitations",
			PriorityJointOwner,
			models.ContractPermissions{
				// Delete and administer require all joint owners.
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "VIEW_STATEMENTS",
					"DOWNLOAD_STATEMENTS", "CHANGE_PIN",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "NOTIFICATIONS",
				),
			})},
		{CategoryRetailBanking, defaultRole(CodeAuthorizedUser, "Authorized User",
			"Can perform transactions and view account details",
			PriorityAuthorizedUser,
			models.ContractPermissions{
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "VIEW_STATEMENTS", "CHANGE_PIN",
				),
				Resources: models.NewStringSet("BALANCE", "TRANSACTIONS", "STATEMENTS"),
			})},
		{CategoryRetailBanking, defaultRole(CodeViewer, "Viewer",
			"Read-only access to account information",
			PriorityViewer,
			models.ContractPermissions{
				CanRead:    true,
				Operations: models.NewStringSet("VIEW_STATEMENTS"),
				Resources:  models.NewStringSet("BALANCE", "TRANSACTIONS", "STATEMENTS"),
			})},
		{CategoryRetailBanking, defaultRole(CodeBeneficiary, "Beneficiary",
			"Can receive benefits but has limited operational control",
			PriorityBeneficiary,
			models.ContractPermissions{
				CanRead:    true,
				Operations: models.NewStringSet("VIEW_STATEMENTS", "RECEIVE_BENEFITS"),
				Resources:  models.NewStringSet("BALANCE", "TRANSACTIONS", "STATEMENTS"),
			},
			"INVESTMENT", "INSURANCE", "PENSION")},

		// ---------- Corporate banking ----------
		{CategoryCorporateBanking, defaultRole(CodeAccountAdministrator, "Account Administrator",
			"Full administrative control over corporate accounts and users",
			PriorityAccountAdministrator,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanDelete: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "BULK_TRANSFER",
					"ADD_USER", "REMOVE_USER", "MODIFY_USER_PERMISSIONS",
					"SET_TRANSACTION_LIMITS", "APPROVE_TRANSACTIONS",
					"CONFIGURE_WORKFLOWS", "MANAGE_SIGNATORIES",
					"VIEW_ALL_TRANSACTIONS", "EXPORT_DATA", "CLOSE_ACCOUNT",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "SETTINGS",
					"USER_MANAGEMENT", "LIMITS", "WORKFLOWS", "AUDIT_LOGS",
					"REPORTS", "NOTIFICATIONS", "DOCUMENTS",
				),
			},
			"CORPORATE_ACCOUNT", "BUSINESS_ACCOUNT", "ESCROW")},
		{CategoryCorporateBanking, defaultRole(CodeTransactionManager, "Transaction Manager",
			"Can execute and manage high-value corporate transactions",
			PriorityTransactionManager,
			models.ContractPermissions{
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "BULK_TRANSFER",
					"WIRE_TRANSFER", "ACH_TRANSFER", "APPROVE_TRANSACTIONS",
					"VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "PENDING_TRANSACTIONS",
				),
			},
			"CORPORATE_ACCOUNT", "BUSINESS_ACCOUNT", "TREASURY")},
		{CategoryCorporateBanking, defaultRole(CodeApprover, "Approver",
			"Can approve transactions and authorize operations",
			PriorityApprover,
			models.ContractPermissions{
				CanRead: true,
				Operations: models.NewStringSet(
					"APPROVE_TRANSACTIONS", "REJECT_TRANSACTIONS",
					"VIEW_PENDING_TRANSACTIONS", "VIEW_STATEMENTS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "PENDING_TRANSACTIONS", "STATEMENTS",
				),
			},
			"CORPORATE_ACCOUNT", "BUSINESS_ACCOUNT", "LOAN", "CREDIT_LINE")},
		{CategoryCorporateBanking, defaultRole(CodeInitiator, "Initiator",
			"Can initiate transactions that require approval",
			PriorityInitiator,
			models.ContractPermissions{
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"INITIATE_TRANSFER", "INITIATE_PAYMENT", "INITIATE_BULK_TRANSFER",
					"VIEW_STATEMENTS", "CANCEL_PENDING_TRANSACTIONS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "PENDING_TRANSACTIONS", "STATEMENTS",
				),
			},
			"CORPORATE_ACCOUNT", "BUSINESS_ACCOUNT")},
		{CategoryCorporateBanking, defaultRole(CodeInquiryUser, "Inquiry User",
			"Read-only access to corporate account information",
			PriorityInquiryUser,
			models.ContractPermissions{
				CanRead:    true,
				Operations: models.NewStringSet("VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS"),
				Resources:  models.NewStringSet("BALANCE", "TRANSACTIONS", "STATEMENTS"),
			},
			"CORPORATE_ACCOUNT", "BUSINESS_ACCOUNT", "TREASURY")},

		// ---------- Lending ----------
		{CategoryLending, defaultRole(CodeBorrower, "Borrower",
			"Primary borrower with full loan management responsibilities",
			PriorityBorrower,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"MAKE_PAYMENT", "VIEW_LOAN_DETAILS", "REQUEST_PAYOFF",
					"MODIFY_PAYMENT_METHOD", "REQUEST_MODIFICATION",
					"VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS", "ADD_COLLATERAL",
					"REQUEST_ADDITIONAL_FUNDS",
				),
				Resources: models.NewStringSet(
					"LOAN_BALANCE", "PAYMENT_HISTORY", "STATEMENTS", "LOAN_TERMS",
					"COLLATERAL", "PAYMENT_SCHEDULE", "INTEREST_DETAILS",
				),
			},
			"LOAN", "MORTGAGE", "CREDIT_LINE", "PERSONAL_LOAN", "AUTO_LOAN")},
		{CategoryLending, defaultRole(CodeCoBorrower, "Co-Borrower",
			"Joint borrower with shared loan responsibilities",
			PriorityCoBorrower,
			models.ContractPermissions{
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"MAKE_PAYMENT", "VIEW_LOAN_DETAILS", "REQUEST_PAYOFF",
					"MODIFY_PAYMENT_METHOD", "VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS",
				),
				Resources: models.NewStringSet(
					"LOAN_BALANCE", "PAYMENT_HISTORY", "STATEMENTS", "LOAN_TERMS",
					"PAYMENT_SCHEDULE", "INTEREST_DETAILS",
				),
			},
			"LOAN", "MORTGAGE", "CREDIT_LINE")},
		{CategoryLending, defaultRole(CodeGuarantor, "Guarantor",
			"Provides guarantee for the loan but has limited access",
			PriorityGuarantor,
			models.ContractPermissions{
				CanRead:    true,
				Operations: models.NewStringSet("VIEW_STATEMENTS", "VIEW_GUARANTEE_STATUS"),
				Resources:  models.NewStringSet("BALANCE", "STATEMENTS", "GUARANTEE_INFO"),
			},
			"LOAN", "CREDIT_LINE")},
		{CategoryLending, defaultRole(CodeCollateralProvider, "Collateral Provider",
			"Provides collateral for the loan but limited operational access",
			PriorityCollateralProvider,
			models.ContractPermissions{
				CanRead: true,
				Operations: models.NewStringSet(
					"VIEW_LOAN_DETAILS", "VIEW_COLLATERAL_STATUS",
					"VIEW_STATEMENTS", "UPDATE_COLLATERAL_INFO",
				),
				Resources: models.NewStringSet(
					"LOAN_BALANCE", "STATEMENTS", "COLLATERAL", "COLLATERAL_VALUATION",
				),
			},
			"LOAN", "MORTGAGE", "CREDIT_LINE", "SECURED_LOAN")},
		{CategoryLending, defaultRole(CodeLoanServicer, "Loan Servicer",
			"Third-party servicer managing loan operations",
			PriorityLoanServicer,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"PROCESS_PAYMENTS", "GENERATE_STATEMENTS", "MODIFY_LOAN_TERMS",
					"MANAGE_ESCROW", "HANDLE_DEFAULTS", "COMMUNICATE_WITH_BORROWER",
				),
				Resources: models.NewStringSet(
					"LOAN_BALANCE", "PAYMENT_HISTORY", "STATEMENTS", "LOAN_TERMS",
					"ESCROW_ACCOUNT", "DEFAULT_STATUS", "COMMUNICATION_LOG",
				),
			},
			"LOAN", "MORTGAGE", "CREDIT_LINE")},

		// ---------- Legal & fiduciary ----------
		{CategoryLegalFiduciary, defaultRole(CodePowerOfAttorney, "Power of Attorney",
			"Acts on behalf of the account owner with full authority",
			PriorityPowerOfAttorney,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanDelete: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "CLOSE_ACCOUNT",
					"MODIFY_SETTINGS", "ADD_AUTHORIZED_USER", "REMOVE_AUTHORIZED_USER",
					"VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS", "SET_LIMITS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "SETTINGS",
					"AUTHORIZED_USERS", "LIMITS", "NOTIFICATIONS",
				),
			})},
		{CategoryLegalFiduciary, defaultRole(CodeTrustee, "Trustee",
			"Manages the account on behalf of beneficiaries",
			PriorityTrustee,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "VIEW_STATEMENTS",
					"DOWNLOAD_STATEMENTS", "MODIFY_SETTINGS", "DISTRIBUTE_BENEFITS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "SETTINGS",
					"BENEFICIARIES", "TRUST_DOCUMENTS",
				),
			},
			"TRUST", "INVESTMENT", "PENSION")},
		{CategoryLegalFiduciary, defaultRole(CodeExecutor, "Executor",
			"Manages accounts as part of estate administration",
			PriorityExecutor,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanDelete: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "CLOSE_ACCOUNT",
					"DISTRIBUTE_ASSETS", "VIEW_STATEMENTS", "DOWNLOAD_STATEMENTS",
					"LIQUIDATE_INVESTMENTS", "PAY_DEBTS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "INVESTMENTS",
					"BENEFICIARIES", "ESTATE_DOCUMENTS", "TAX_DOCUMENTS",
				),
			})},
		{CategoryLegalFiduciary, defaultRole(CodeLegalGuardian, "Legal Guardian",
			"Manages accounts on behalf of minors or incapacitated individuals",
			PriorityLegalGuardian,
			models.ContractPermissions{
				CanRead: true, CanWrite: true, CanAdminister: true,
				Operations: models.NewStringSet(
					"TRANSFER", "WITHDRAW", "DEPOSIT", "VIEW_STATEMENTS",
					"DOWNLOAD_STATEMENTS", "MODIFY_SETTINGS", "EDUCATIONAL_SAVINGS",
				),
				Resources: models.NewStringSet(
					"BALANCE", "TRANSACTIONS", "STATEMENTS", "SETTINGS",
					"GUARDIAN_DOCUMENTS", "EDUCATIONAL_FUNDS",
				),
			},
			"MINOR_ACCOUNT", "CUSTODIAL_ACCOUNT", "EDUCATION_SAVINGS")},

		// ---------- Investment & wealth management ----------
		{CategoryInvestmentWealth, defaultRole(CodeInvestmentAdvisor, "Investment Advisor",
			"Provides investment advice and portfolio recommendations",
			PriorityInvestmentAdvisor,
			models.ContractPermissions{
				CanRead: true,
				Operations: models.NewStringSet(
					"VIEW_PORTFOLIO", "RECOMMEND_INVESTMENTS", "GENERATE_REPORTS",
					"VIEW_PERFORMANCE", "PROVIDE_ADVICE",
				),
				Resources: models.NewStringSet(
					"PORTFOLIO", "PERFORMANCE_DATA", "INVESTMENT_HISTORY",
					"RISK_PROFILE", "ADVISORY_REPORTS",
				),
			},
			"INVESTMENT", "PORTFOLIO", "RETIREMENT", "WEALTH_MANAGEMENT")},
		{CategoryInvestmentWealth, defaultRole(CodePortfolioManager, "Portfolio Manager",
			"Actively manages investment portfolios with trading authority",
			PriorityPortfolioManager,
			models.ContractPermissions{
				CanRead: true, CanWrite: true,
				Operations: models.NewStringSet(
					"BUY_SECURITIES", "SELL_SECURITIES", "REBALANCE_PORTFOLIO",
					"VIEW_PORTFOLIO", "GENERATE_REPORTS", "MANAGE_ALLOCATIONS",
				),
				Resources: models.NewStringSet(
					"PORTFOLIO", "TRADING_AUTHORITY", "PERFORMANCE_DATA",
					"INVESTMENT_HISTORY", "CASH_MANAGEMENT",
				),
			},
			"INVESTMENT", "PORTFOLIO", "MANAGED_ACCOUNT")},
		{CategoryInvestmentWealth, defaultRole(CodeCustodian, "Custodian",
			"Provides custody services for assets and securities",
			PriorityCustodian,
			models.ContractPermissions{
				CanRead: true,
				Operations: models.NewStringSet(
					"SAFEKEEP_ASSETS", "PROCESS_SETTLEMENTS", "PROVIDE_REPORTING",
					"CORPORATE_ACTIONS", "TAX_REPORTING",
				),
				Resources: models.NewStringSet(
					"CUSTODY_ASSETS", "SETTLEMENT_INSTRUCTIONS", "CORPORATE_ACTIONS",
					"CUSTODY_REPORTS", "TAX_DOCUMENTS",
				),
			},
			"CUSTODY", "INVESTMENT", "INSTITUTIONAL")},
	}
}
