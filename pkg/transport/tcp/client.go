package tcp

import (
	"io"
	"net"

	"github.com/snayrouz/combine-go/internal/wire"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/subject"
)

// Dial connects to a frame server identified by address, formatted as
// hostname:port, and republishes its frames through a local hot publisher.
// A clean close by the server finishes the stream; any other transport
// error fails it. Cancelling the returned handle drops the connection.
func Dial(address string) (rs.Publisher[[]byte], rs.Cancellable, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, nil, err
	}
	rwc, err := net.DialTCP("tcp", nil, addr)
	if err != nil {
		return nil, nil, err
	}

	subj := subject.NewPassthrough[[]byte]()
	go pump(rwc, subj)

	return subj, rs.CancelFunc(func() { rwc.Close() }), nil
}

func pump(rwc net.Conn, subj *subject.Passthrough[[]byte]) {
	dec := wire.NewDecoder(rwc)
	for {
		msg, err := dec.Read()
		if err != nil {
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
