package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaptain9960/payflow"
	"github.com/kaptain9960/payflow/api/middleware"
	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/internal/apierror"
)

type Api struct {
	payflow *payflow.Payflow
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	// transfer flow
	router.POST("/search-account", a.SearchAccount)
	router.GET("/amount-transfare/:account", a.TransferAmountEntry)
	router.POST("/amount-transfare-process/:account", a.InitiateTransfer)
	router.GET("/transfare-confirm/:account/:txn", a.TransferConfirm)
	router.POST("/transfare-process/:account/:txn", a.ProcessTransfer)
	router.GET("/transfare-completed/:account/:txn", a.TransferCompleted)

	// payment request flow
	router.POST("/request-search-user", a.SearchAccount)
	router.GET("/amount-request/:account", a.RequestAmountEntry)
	router.POST("/amount-request-process/:account", a.InitiateRequest)
	router.GET("/request-confirm/:account/:txn", a.RequestConfirm)
	router.POST("/request-process/:account/:txn", a.ProcessRequest)
	router.GET("/request-completed/:account/:txn", a.RequestCompleted)

	// settlement flow
	router.GET("/settlement-confirmation/:account/:txn", a.SettlementConfirmation)
	router.POST("/settlement-processing/:account/:txn", a.SettlementProcessing)
	router.GET("/settlement-completed/:account/:txn", a.SettlementCompleted)
	router.POST("/delete-request/:account/:txn", a.DeleteRequest)

	router.POST("/cancel-transaction/:txn", a.CancelTransaction)
	router.GET("/transaction", a.TransactionHistory)
	router.GET("/transaction/:txn", a.GetTransaction)

	// credit cards
	router.POST("/card", a.CreateCard)
	router.GET("/card/:card", a.GetCard)
	router.POST("/fund-credit-card/:card", a.FundCard)
	router.POST("/withdraw-credit-card/:card", a.WithdrawCard)
	router.POST("/delete-credit-card/:card", a.DeleteCard)

	// invoices
	router.POST("/invoice-management", a.CreateInvoice)
	router.GET("/invoice-management", a.ListInvoices)
	router.GET("/invoice/:id", a.GetInvoice)
	router.POST("/invoice/:id/status", a.UpdateInvoiceStatus)

	// accounts
	router.POST("/accounts", a.CreateAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.GET("/accounts/:number", a.GetAccount)

	return a.router
}

func NewAPI(p *payflow.Payflow) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{payflow: p, router: r}
}

// handleError resolves a workflow error to its HTTP shape. A STATE_CONFLICT
// becomes a 303 with the canonical step in Location; the client self-corrects
// instead of failing.
func handleError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if apiErr, ok := err.(apierror.APIError); ok {
		if apiErr.RedirectTo != "" && status == http.StatusSeeOther {
			c.Header("Location", apiErr.RedirectTo)
		}
		c.JSON(status, gin.H{
			"error":       apiErr.Message,
			"code":        apiErr.Code,
			"redirect_to": apiErr.RedirectTo,
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
