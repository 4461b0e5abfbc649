package client

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/antonio-alexander/go-hr-service/internal/data"

	"github.com/pkg/errors"
)

// ResponseError is returned when the service responds with a status other
// than 200, 201 or 204
type ResponseError struct {
	StatusCode int
	Message    string
}

func (r *ResponseError) Error() string {
	if r.Message == "" {
		return fmt.Sprintf("status code: %d", r.StatusCode)
	}
	return fmt.Sprintf("status code: %d; %s", r.StatusCode, r.Message)
}

// StatusCode returns the status code of a *ResponseError within err or 0
func StatusCode(err error) int {
	var r *ResponseError

	if errors.As(err, &r) {
		return r.StatusCode
	}
	return 0
}

func responseError(statusCode int, bytes []byte) error {
	var e data.Error

	if err := json.Unmarshal(bytes, &e); err != nil || e.Error == "" {
		return &ResponseError{StatusCode: statusCode, Message: string(bytes)}
	}
	return &ResponseError{StatusCode: statusCode, Message: e.Error}
}

// getTransport returns a transport that presents the client certificate
// and trusts the ca, tls is only configured when all three files are set
func getTransport(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	if sslCaFile == "" || sslCrtFile == "" || sslKeyFile == "" {
		return &http.Transport{}, nil
	}
	caCert, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read ca file")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("no certificates found in %s", sslCaFile)
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load key pair")
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: []tls.Certificate{certificate},
		},
	}, nil
}
