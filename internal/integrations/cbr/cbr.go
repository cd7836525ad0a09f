package cbr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/credit-engine/internal/config"
)

// CBRClient resolves the current key rate from the Central Bank of Russia.
// Variable-rate credits fix their rate from this source once, at creation.
type CBRClient struct {
	url    string
	margin decimal.Decimal
	client *http.Client
	log    *logrus.Logger
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url:    cfg.CBRURL,
		margin: decimal.NewFromFloat(cfg.RateMargin),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for key rate
func (c *CBRClient) buildSOAPRequest() string {
	fromDate := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse parses the XML response to extract the latest key rate
func (c *CBRClient) parseXMLResponse(rawBody []byte) (decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse XML: %v", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return decimal.Zero, fmt.Errorf("no key rate data found in XML")
	}

	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return decimal.Zero, fmt.Errorf("rate element not found in XML")
	}

	rate, err := decimal.NewFromString(rateElement.Text())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate: %v", err)
	}
	return rate, nil
}

// KeyRate retrieves the current key rate from CBR plus the configured margin
func (c *CBRClient) KeyRate() (decimal.Decimal, error) {
	body, err := c.sendRequest(c.buildSOAPRequest())
	if err != nil {
		return decimal.Zero, err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return decimal.Zero, err
	}

	rate = rate.Add(c.margin)
	c.log.Infof("Retrieved key rate: %s%% (including %s%% margin)", rate.StringFixed(2), c.margin.StringFixed(2))
	return rate, nil
}
