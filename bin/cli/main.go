// redikv-cli is an interactive administration client for redikv. It
// dials a running server over TCP, reads lines from stdin, tokenizes
// each with shellwords the way the teacher's wizard commands parse
// free-form player input, sends them as RESP command arrays, and
// prints the decoded reply. STATS renders INFO's bulk reply as a
// table; SLOWLOG/ERRORS likewise render their array replies as
// tables — everything else prints as returned by readReply.
//
// Grounded on bin/admin/main.go's net.Dial/bufio administration
// pattern and game/wizcommands.go's shellwords.SplitPosix tokenizing.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/rodaine/table"
	"github.com/zond/redikv/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "address of the redikv server")
	flag.Parse()

	socket, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redikv-cli: %v\n", err)
		os.Exit(1)
	}
	defer socket.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(socket), bufio.NewWriter(socket))

	if len(flag.Args()) > 0 {
		runOne(rw, flag.Args())
		return
	}
	repl(rw)
}

func repl(rw *bufio.ReadWriter) {
	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("redikv> ")
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line != "" {
			parts, err := shellwords.SplitPosix(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
				fmt.Print("redikv> ")
				continue
			}
			if len(parts) > 0 {
				runOne(rw, parts)
			}
		}
		fmt.Print("redikv> ")
	}
}

// runOne sends one command and renders its reply. STATS, SLOWLOG, and
// ERRORS get table rendering; everything else is printed as-is.
func runOne(rw *bufio.ReadWriter, parts []string) {
	name := strings.ToUpper(parts[0])
	wireParts := parts
	if name == "STATS" {
		wireParts = append([]string{"INFO"}, parts[1:]...)
	}

	if err := sendCommand(rw, wireParts); err != nil {
		fmt.Fprintf(os.Stderr, "write error: %v\n", err)
		return
	}

	switch name {
	case "STATS":
		printInfoTable(rw)
	case "SLOWLOG":
		printSlowLogTable(rw)
	case "ERRORS":
		printErrorsTable(rw)
	default:
		reply, err := readReply(rw.Reader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}
		fmt.Println(reply)
	}
}

// sendCommand encodes parts as a RESP array of bulk strings, the wire
// shape every redikv command uses regardless of which handler serves
// it, and flushes it to the server.
func sendCommand(rw *bufio.ReadWriter, parts []string) error {
	elements := make([][]byte, len(parts))
	for i, p := range parts {
		elements[i] = resp.EncodeBulkString([]byte(p))
	}
	if _, err := rw.Write(resp.EncodeArray(elements)); err != nil {
		return err
	}
	return rw.Flush()
}

// printInfoTable renders INFO's "key:value\r\n"-separated bulk reply
// as a two-column table, per game/stats_commands.go's table.New(...)
// .WithWriter(...).AddRow(...).Print() pattern.
func printInfoTable(rw *bufio.ReadWriter) {
	reply, err := readReply(rw.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return
	}
	t := table.New("Field", "Value").WithWriter(os.Stdout)
	for _, line := range strings.Split(reply, "\r\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		field, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		t.AddRow(field, value)
	}
	t.Print()
}

// printSlowLogTable renders SLOWLOG's "<command> <duration>" bulk
// string array as a table, slowest entry first as the server returns
// it.
func printSlowLogTable(rw *bufio.ReadWriter) {
	reply, err := readReply(rw.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return
	}
	if reply == "(empty array)" {
		fmt.Println("No slow commands recorded.")
		return
	}
	t := table.New("#", "Command", "Duration").WithWriter(os.Stdout)
	for i, line := range numberedLines(reply) {
		command, duration, found := strings.Cut(line, " ")
		if !found {
			command, duration = line, ""
		}
		t.AddRow(strconv.Itoa(i+1), command, duration)
	}
	t.Print()
}

// printErrorsTable renders ERRORS's recent-reasons bulk string array.
func printErrorsTable(rw *bufio.ReadWriter) {
	reply, err := readReply(rw.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return
	}
	if reply == "(empty array)" {
		fmt.Println("No errors recorded for that remote.")
		return
	}
	t := table.New("#", "Reason").WithWriter(os.Stdout)
	for i, line := range numberedLines(reply) {
		t.AddRow(strconv.Itoa(i+1), line)
	}
	t.Print()
}

// numberedLines strips readReply's "N) " array-index prefixes back off
// so table rendering can supply its own numbered column.
func numberedLines(reply string) []string {
	raw := strings.Split(reply, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if _, rest, found := strings.Cut(line, ") "); found {
			out = append(out, rest)
		} else {
			out = append(out, line)
		}
	}
	return out
}
