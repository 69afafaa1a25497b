package ws

import (
	"fmt"
	"io"

	"golang.org/x/net/websocket"

	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/subject"
)

// Dial connects to a stream server identified by address, formatted as
// hostname:port, and republishes its frames through a local hot publisher.
// A clean close by the server finishes the stream; any other transport
// error fails it. Cancelling the returned handle drops the connection.
func Dial(address string) (rs.Publisher[[]byte], rs.Cancellable, error) {
	rwc, err := websocket.Dial(fmt.Sprintf("ws://%s/ws", address), "", fmt.Sprintf("http://%s/", address))
	if err != nil {
		return nil, nil, err
	}

	subj := subject.NewPassthrough[[]byte]()
	go pump(rwc, subj)

	return subj, rs.CancelFunc(func() { rwc.Close() }), nil
}

func pump(rwc *websocket.Conn, subj *subject.Passthrough[[]byte]) {
	var msg []byte
	for {
		if err := websocket.Message.Receive(rwc, &msg); err != nil {
			if err == io.EOF {
				subj.SendCompletion(rs.Finished())
			} else {
				subj.SendCompletion(rs.Failed(err))
			}
			return
		}
		frame := make([]byte, len(msg))
		copy(frame, msg)
		subj.Send(frame)
	}
}
