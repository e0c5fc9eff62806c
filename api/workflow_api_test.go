/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kaptain9960/payflow"
	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/database"
	"github.com/kaptain9960/payflow/model"
)

var accountColumns = []string{"account_id", "number", "name", "balance", "currency", "created_at", "meta_data"}
var transactionColumns = []string{"transaction_id", "kind", "source", "destination", "amount", "currency", "description", "status", "created_at", "meta_data"}

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	cnf := &config.Configuration{}
	cnf.Redis.Dns = mr.Addr()
	config.MockConfig(cnf)

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	service, err := payflow.NewPayflow(&database.Datasource{Conn: db})
	assert.NoError(t, err)

	return NewAPI(service).Router(), mock
}

func expectAccountFetch(mock sqlmock.Sqlmock, number, balance string) {
	mock.ExpectQuery("SELECT account_id, number, name, balance").
		WithArgs(number).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("acc_"+number, number, "Account "+number, balance, "USD", time.Now(), nil))
}

func expectTransactionFetch(mock sqlmock.Sqlmock, id string, kind model.Kind, status model.Status, source, destination string) {
	mock.ExpectQuery("SELECT transaction_id, kind, source, destination").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(id, kind, source, destination, "150.00", "USD", "", status, time.Now(), nil))
}

func postJSON(router *gin.Engine, route string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", route, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func getJSON(router *gin.Engine, route string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", route, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSearchAccountEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	expectAccountFetch(mock, "1000000002", "20.00")

	resp := postJSON(router, "/search-account", map[string]string{"account_number": "1000000002"})
	assert.Equal(t, 200, resp.Code)

	var account model.Account
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	assert.Equal(t, "1000000002", account.Number)
}

func TestSearchAccountEndpoint_NotFound(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT account_id, number, name, balance").
		WithArgs("0000000000").
		WillReturnRows(sqlmock.NewRows(accountColumns))

	resp := postJSON(router, "/search-account", map[string]string{"account_number": "0000000000"})
	assert.Equal(t, 404, resp.Code)
}

func TestInitiateTransferEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	expectAccountFetch(mock, "1000000001", "500.00")
	expectAccountFetch(mock, "1000000002", "20.00")
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := postJSON(router, "/amount-transfare-process/1000000002", map[string]string{
		"sender": "1000000001",
		"amount": "150.00",
	})
	assert.Equal(t, 201, resp.Code)

	var txn model.Transaction
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&txn))
	assert.Equal(t, model.StatusInitiated, txn.Status)
}

func TestInitiateTransferEndpoint_MissingSender(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(router, "/amount-transfare-process/1000000002", map[string]string{
		"amount": "150.00",
	})
	assert.Equal(t, 400, resp.Code)
}

func TestTransferConfirmEndpoint_RedirectsWhenCompleted(t *testing.T) {
	router, mock := setupRouter(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindTransfer, model.StatusCompleted, "1000000001", "1000000002")

	resp := getJSON(router, fmt.Sprintf("/transfare-confirm/1000000002/%s", id))
	assert.Equal(t, 303, resp.Code)
	assert.Equal(t, fmt.Sprintf("/transfare-completed/1000000002/%s", id), resp.Header().Get("Location"))
}

func TestProcessTransferEndpoint_StateConflict(t *testing.T) {
	router, mock := setupRouter(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindTransfer, model.StatusCompleted, "1000000001", "1000000002")

	resp := postJSON(router, fmt.Sprintf("/transfare-process/1000000002/%s", id), nil)
	assert.Equal(t, 303, resp.Code)
	assert.Equal(t, fmt.Sprintf("/transfare-completed/1000000002/%s", id), resp.Header().Get("Location"))
}

func TestDeleteRequestEndpoint_PastInitiated(t *testing.T) {
	router, mock := setupRouter(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002")
	mock.ExpectExec("DELETE FROM transactions").
		WithArgs(id, model.StatusInitiated).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002")

	resp := postJSON(router, fmt.Sprintf("/delete-request/1000000001/%s", id), nil)
	assert.Equal(t, 303, resp.Code)
	assert.Equal(t, fmt.Sprintf("/settlement-confirmation/1000000001/%s", id), resp.Header().Get("Location"))
}

func TestCreateInvoiceEndpoint_BadEmail(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(router, "/invoice-management", map[string]string{
		"client_name":  "Ada Lovelace",
		"client_email": "not-an-email",
		"amount":       "1200.00",
		"currency":     "USD",
	})
	assert.Equal(t, 400, resp.Code)
}

func TestFundCardEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT card_id, account_number, masked_number").
		WithArgs("crd_1").
		WillReturnRows(sqlmock.NewRows([]string{"card_id", "account_number", "masked_number", "brand", "balance", "currency", "created_at"}).
			AddRow("crd_1", "1000000001", "************4242", model.BrandVisa, "0.00", "USD", time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs("1000000001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE credit_cards").
		WithArgs("crd_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp := postJSON(router, "/fund-credit-card/crd_1", map[string]string{"amount": "50.00"})
	assert.Equal(t, 200, resp.Code)

	var txn model.Transaction
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&txn))
	assert.Equal(t, model.KindCardFunding, txn.Kind)
	assert.Equal(t, model.StatusCompleted, txn.Status)
}
