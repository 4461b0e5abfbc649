package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs returns the process environment as a map, values found in the
// optional env files are used only when the variable isn't already set
func Envs(envFiles ...string) (map[string]string, error) {
	envs := make(map[string]string)
	for _, envFile := range envFiles {
		if envFile == "" {
			continue
		}
		fileEnvs, err := godotenv.Read(envFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read env file %s", envFile)
		}
		for key, value := range fileEnvs {
			envs[key] = value
		}
	}
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs, nil
}

// LaunchContext returns a context that's cancelled once a signal is received
// on osSignal or cancel is called
func LaunchContext(wg *sync.WaitGroup, osSignal <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		select {
		case <-ctx.Done():
		case <-osSignal:
		}
	}()
	return ctx, cancel
}

func DoRequest(client *http.Client, uri, method string, input interface{}, v ...interface{}) ([]byte, error) {
	var byts []byte
	var err error

	switch v := input.(type) {
	default:
		if byts, err = json.Marshal(input); err != nil {
			return nil, err
		}
	case nil:
	case url.Values:
		uri += "?" + v.Encode()
	}
	body := bytes.NewBuffer(byts)
	request, err := http.NewRequest(method, uri, body)
	if err != nil {
		return nil, err
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	switch response.StatusCode {
	default:
		byts, _ = io.ReadAll(response.Body)
		if len(byts) > 0 {
			return nil, errors.Errorf("%s: %s", response.Status, string(byts))
		}
		return nil, errors.Errorf("%s", response.Status)
	case http.StatusNoContent:
		return []byte{}, nil
	case http.StatusOK, http.StatusCreated:
		bytes, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return bytes, json.Unmarshal(bytes, v[0])
		}
		return bytes, nil
	}
}
