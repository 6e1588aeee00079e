package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Статусы инвойса CryptoBot
const (
	InvoiceActive  = "active"
	InvoicePaid    = "paid"
	InvoiceExpired = "expired"
)

// Окно оплаты выставляется на стороне оракула через expires_in:
// клиентских проверок по часам нет ни в одном из путей сверки.
const invoiceLifetime = 15 * time.Minute

// CryptoPayClient — клиент платёжного оракула CryptoBot. Оракул только
// опрашивается; push-доставка не предполагается.
type CryptoPayClient struct {
	BaseURL string
	Token   string
	http    *http.Client
}

func NewCryptoPayClient(baseURL, token string) *CryptoPayClient {
	return &CryptoPayClient{
		BaseURL: baseURL,
		Token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Invoice — выставленный счёт
type Invoice struct {
	InvoiceID int64  `json:"invoice_id"`
	Status    string `json:"status"`
	PayURL    string `json:"pay_url"`
}

type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// CreateInvoice выставляет счёт на amount USDT с 15-минутным сроком оплаты
func (c *CryptoPayClient) CreateInvoice(amount decimal.Decimal, description string) (*Invoice, error) {
	body := map[string]interface{}{
		"asset":       "USDT",
		"amount":      amount.StringFixed(2),
		"description": description,
		"expires_in":  int(invoiceLifetime.Seconds()),
	}
	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/createInvoice", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Crypto-Pay-API-Token", c.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cryptobot createInvoice: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cryptobot createInvoice: status %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("cryptobot createInvoice: %w", err)
	}
	if !ar.OK {
		return nil, fmt.Errorf("cryptobot createInvoice: api returned not ok")
	}
	var inv Invoice
	if err := json.Unmarshal(ar.Result, &inv); err != nil {
		return nil, fmt.Errorf("cryptobot createInvoice: %w", err)
	}
	return &inv, nil
}

// GetInvoiceStatus возвращает статус счёта по его ID
func (c *CryptoPayClient) GetInvoiceStatus(invoiceID int64) (string, error) {
	u := c.BaseURL + "/getInvoices?invoice_ids=" + url.QueryEscape(strconv.FormatInt(invoiceID, 10))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Crypto-Pay-API-Token", c.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cryptobot getInvoices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cryptobot getInvoices: status %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("cryptobot getInvoices: %w", err)
	}
	if !ar.OK {
		return "", fmt.Errorf("cryptobot getInvoices: api returned not ok")
	}
	var result struct {
		Items []Invoice `json:"items"`
	}
	if err := json.Unmarshal(ar.Result, &result); err != nil {
		return "", fmt.Errorf("cryptobot getInvoices: %w", err)
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("cryptobot getInvoices: invoice %d not found", invoiceID)
	}
	return result.Items[0].Status, nil
}
