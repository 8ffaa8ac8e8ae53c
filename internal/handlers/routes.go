package handlers

import (
	"bizsuite/internal/middleware"
	"bizsuite/internal/models"

	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler set served under /v1
type Handlers struct {
	Auth        *AuthHandlers
	AuditLogs   *AuditLogsHandlers
	Tenant      *TenantHandlers
	User        *UserHandlers
	Category    *CategoryHandlers
	Product     *ProductHandlers
	Customer    *CustomerHandlers
	Quotation   *QuotationHandlers
	LandedCost  *LandedCostHandlers
	Property    *PropertyHandlers
	Rental      *RentalHandlers
	Payment     *PaymentHandlers
	Maintenance *MaintenanceHandlers
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints
func RegisterPublicRoutes(v1 *echo.Group, h *Handlers) {
	auth := v1.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
}

// RegisterProtectedRoutes mounts everything that needs a token. Each route carries its permission.
func RegisterProtectedRoutes(g *echo.Group, h *Handlers, rbac *middleware.RBACMiddleware) {
	perm := rbac.RequirePermission

	g.GET("/me", h.Auth.Me)
	g.GET("/tenant", h.Tenant.GetCurrentTenant)
	g.PUT("/tenant", h.Tenant.UpdateCurrentTenant, perm(models.PermAccountWrite))

	users := g.Group("/users", perm(models.PermAccountWrite))
	users.GET("", h.User.ListUsers)
	users.GET("/:id", h.User.GetUser)
	users.PATCH("/:id/status", h.User.UpdateUserStatus)

	// Audit logs
	audit := g.Group("/audit-logs", perm(models.PermAuditRead))
	audit.GET("", h.AuditLogs.ListAuditLogs)
	audit.GET("/statistics", h.AuditLogs.GetStatistics)
	audit.GET("/recent", h.AuditLogs.GetRecentActivity)
	audit.GET("/model", h.AuditLogs.GetModelHistory)
	audit.GET("/user/:userId", h.AuditLogs.GetUserActivity)
	audit.GET("/:id", h.AuditLogs.GetAuditLog)

	// Catalog
	catalogRead, catalogWrite := perm(models.PermCatalogRead), perm(models.PermCatalogWrite)
	g.GET("/categories", h.Category.ListCategories, catalogRead)
	g.GET("/categories/tree", h.Category.CategoryTree, catalogRead)
	g.POST("/categories", h.Category.CreateCategory, catalogWrite)
	g.GET("/categories/:id", h.Category.GetCategory, catalogRead)
	g.PUT("/categories/:id", h.Category.UpdateCategory, catalogWrite)
	g.DELETE("/categories/:id", h.Category.DeleteCategory, catalogWrite)

	g.GET("/products", h.Product.ListProducts, catalogRead)
	g.POST("/products", h.Product.CreateProduct, catalogWrite)
	g.GET("/products/:id", h.Product.GetProduct, catalogRead)
	g.PUT("/products/:id", h.Product.UpdateProduct, catalogWrite)
	g.DELETE("/products/:id", h.Product.DeleteProduct, catalogWrite)
	g.GET("/products/:id/latest-cost-price", h.Product.LatestCostPrice, catalogRead)

	g.GET("/product-cost-prices", h.Product.ListCostPrices, catalogRead)
	g.POST("/product-cost-prices", h.Product.CreateCostPrice, catalogWrite)
	g.GET("/product-cost-prices/:id", h.Product.GetCostPrice, catalogRead)
	g.PUT("/product-cost-prices/:id", h.Product.UpdateCostPrice, catalogWrite)
	g.DELETE("/product-cost-prices/:id", h.Product.DeleteCostPrice, catalogWrite)

	// Customers
	customersRead, customersWrite := perm(models.PermCustomersRead), perm(models.PermCustomersWrite)
	g.GET("/customers", h.Customer.ListCustomers, customersRead)
	g.POST("/customers", h.Customer.CreateCustomer, customersWrite)
	g.POST("/customers/bulk-import", h.Customer.BulkImportCustomers, customersWrite)
	g.GET("/customers/:id", h.Customer.GetCustomer, customersRead)
	g.PUT("/customers/:id", h.Customer.UpdateCustomer, customersWrite)
	g.DELETE("/customers/:id", h.Customer.DeleteCustomer, customersWrite)

	// Quotations and follow-ups
	quotationsRead, quotationsWrite := perm(models.PermQuotationsRead), perm(models.PermQuotationsWrite)
	g.GET("/quotations", h.Quotation.ListQuotations, quotationsRead)
	g.GET("/quotations/preview-number", h.Quotation.PreviewNumber, quotationsRead)
	g.GET("/quotations/export", h.Quotation.ExportQuotations, quotationsRead)
	g.POST("/quotations", h.Quotation.CreateQuotation, quotationsWrite)
	g.GET("/quotations/:id", h.Quotation.GetQuotation, quotationsRead)
	g.PUT("/quotations/:id", h.Quotation.UpdateQuotation, quotationsWrite)
	g.DELETE("/quotations/:id", h.Quotation.DeleteQuotation, quotationsWrite)
	g.POST("/quotations/:id/send", h.Quotation.SendQuotation, quotationsWrite)
	g.POST("/quotations/:id/accept", h.Quotation.AcceptQuotation, quotationsWrite)
	g.POST("/quotations/:id/reject", h.Quotation.RejectQuotation, quotationsWrite)
	g.POST("/quotations/:id/pdf", h.Quotation.GeneratePDF, quotationsRead)
	g.GET("/quotations/:id/status-history", h.Quotation.StatusHistory, quotationsRead)
	g.GET("/quotations/:id/followups", h.Quotation.ListFollowups, quotationsRead)

	g.GET("/quotation-followups/pending", h.Quotation.PendingFollowups, quotationsRead)
	g.GET("/quotation-followups/statistics", h.Quotation.FollowupStatistics, quotationsRead)
	g.POST("/quotation-followups/:id/send", h.Quotation.MarkFollowupSent, quotationsWrite)
	g.POST("/quotation-followups/:id/skip", h.Quotation.SkipFollowup, quotationsWrite)

	// Landed cost
	landed := g.Group("/landed-cost", perm(models.PermLandedCostWrite))
	landed.POST("/calculate", h.LandedCost.Calculate)
	landed.POST("/shipments", h.LandedCost.CreateShipment)
	landed.GET("/shipments", h.LandedCost.ListShipments)
	landed.GET("/shipments/:id", h.LandedCost.GetShipment)
	landed.POST("/shipments/:id/finalize", h.LandedCost.FinalizeShipment)

	// Properties and units
	propertiesRead, propertiesWrite := perm(models.PermPropertiesRead), perm(models.PermPropertiesWrite)
	g.GET("/properties", h.Property.ListProperties, propertiesRead)
	g.POST("/properties", h.Property.CreateProperty, propertiesWrite)
	g.GET("/properties/:id", h.Property.GetProperty, propertiesRead)
	g.PUT("/properties/:id", h.Property.UpdateProperty, propertiesWrite)
	g.DELETE("/properties/:id", h.Property.DeleteProperty, propertiesWrite)
	g.POST("/properties/:id/units/generate", h.Property.GenerateUnits, propertiesWrite)

	g.GET("/units", h.Property.ListUnits, propertiesRead)
	g.POST("/units", h.Property.CreateUnit, propertiesWrite)
	g.POST("/units/bulk-import", h.Property.BulkImportUnits, propertiesWrite)
	g.GET("/units/import-template", h.Property.ImportTemplate, propertiesRead)
	g.GET("/units/:id", h.Property.GetUnit, propertiesRead)
	g.PUT("/units/:id", h.Property.UpdateUnit, propertiesWrite)
	g.DELETE("/units/:id", h.Property.DeleteUnit, propertiesWrite)
	g.GET("/units/:id/occupancy-history", h.Property.OccupancyHistory, propertiesRead)

	// Rental tenants and leases
	tenantsRead, tenantsWrite := perm(models.PermTenantsRead), perm(models.PermTenantsWrite)
	g.GET("/rental-tenants", h.Rental.ListRentalTenants, tenantsRead)
	g.POST("/rental-tenants", h.Rental.CreateRentalTenant, tenantsWrite)
	g.GET("/rental-tenants/:id", h.Rental.GetRentalTenant, tenantsRead)
	g.PUT("/rental-tenants/:id", h.Rental.UpdateRentalTenant, tenantsWrite)
	g.DELETE("/rental-tenants/:id", h.Rental.DeleteRentalTenant, tenantsWrite)

	leasesWrite := perm(models.PermLeasesWrite)
	g.GET("/tenant-units", h.Rental.ListLeases, tenantsRead)
	g.POST("/tenant-units", h.Rental.CreateLease, leasesWrite)
	g.GET("/tenant-units/:id", h.Rental.GetLease, tenantsRead)
	g.PUT("/tenant-units/:id", h.Rental.UpdateLease, leasesWrite)
	g.DELETE("/tenant-units/:id", h.Rental.DeleteLease, leasesWrite)
	g.POST("/tenant-units/:id/end", h.Rental.EndLease, leasesWrite)
	g.POST("/tenant-units/:id/document", h.Rental.UploadLeaseDocument, leasesWrite)

	// Payments and rent invoices
	paymentsRead, paymentsWrite := perm(models.PermPaymentsRead), perm(models.PermPaymentsWrite)
	g.GET("/payments", h.Payment.ListPayments, paymentsRead)
	g.GET("/payments/summary", h.Payment.PaymentSummary, paymentsRead)
	g.GET("/payments/export", h.Payment.ExportPayments, paymentsRead)
	g.POST("/payments", h.Payment.CreatePayment, paymentsWrite)
	g.GET("/payments/:id", h.Payment.GetPayment, paymentsRead)
	g.POST("/payments/:id/capture", h.Payment.CapturePayment, paymentsWrite)
	g.POST("/payments/:id/void", h.Payment.VoidPayment, paymentsWrite)

	g.GET("/rent-invoices", h.Payment.ListRentInvoices, paymentsRead)
	g.POST("/rent-invoices/generate", h.Payment.GenerateRentInvoices, paymentsWrite)
	g.GET("/rent-invoices/:id", h.Payment.GetRentInvoice, paymentsRead)
	g.POST("/rent-invoices/:id/pdf", h.Payment.RentInvoicePDF, paymentsRead)

	// Maintenance
	maintenanceWrite := perm(models.PermMaintenanceWrite)
	g.GET("/maintenance-requests", h.Maintenance.ListMaintenanceRequests, propertiesRead)
	g.POST("/maintenance-requests", h.Maintenance.CreateMaintenanceRequest, maintenanceWrite)
	g.GET("/maintenance-requests/:id", h.Maintenance.GetMaintenanceRequest, propertiesRead)
	g.PUT("/maintenance-requests/:id", h.Maintenance.UpdateMaintenanceRequest, maintenanceWrite)
	g.DELETE("/maintenance-requests/:id", h.Maintenance.DeleteMaintenanceRequest, maintenanceWrite)
}
