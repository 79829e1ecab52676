package mailer

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSendWithFakeSMTPServer(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025/tcp", "1080/tcp"},
				WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
			},
		},
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := container.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := container.MappedPort(ctx, "1025/tcp")
	require.NoError(t, err)
	webPort, err := container.MappedPort(ctx, "1080/tcp")
	require.NoError(t, err)

	m := New(Config{
		Server:      host,
		Port:        smtpPort.Int(),
		FromAddress: "bestuur@rvliethorp.nl",
		FromName:    "RV Liethorp",
	}, nil)
	messageID, err := m.Send(ctx, Message{
		ToAddress: "bob@example.com",
		ToName:    "Bob",
		Subject:   "Kantinedienst",
		HTML:      "<p>Je staat ingeroosterd.</p>",
	})
	require.NoError(t, err)

	web := resty.New().SetBaseURL(fmt.Sprintf("http://%s:%s", host, webPort.Port()))

	res, err := web.R().Get("/messages")
	require.NoError(t, err)
	require.Contains(t, res.String(), "Kantinedienst")
	require.Contains(t, res.String(), "bob@example.com")

	res, err = web.R().Get("/messages/1.source")
	require.NoError(t, err)
	require.Contains(t, res.String(), messageID)

	res, err = web.R().Get("/messages/1.html")
	require.NoError(t, err)
	require.Contains(t, res.String(), "Je staat ingeroosterd.")
}
