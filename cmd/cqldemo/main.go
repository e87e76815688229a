// Copyright 2020 DataStax
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command cqldemo dials a CQL v1 server, reports its supported startup
// options, and runs a query against it end to end. It exists to exercise
// cqlclient against a real server, not as a general-purpose CQL shell.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cqlstream/cqlv1/cqlclient"
	"github.com/cqlstream/cqlv1/primitive"
)

func main() {
	var (
		address  string
		keyspace string
		username string
		password string
		cql      string
		logLevel int
	)
	flag.StringVar(&address, "address", "127.0.0.1:9042", "host:port of the CQL v1 server")
	flag.StringVar(&keyspace, "keyspace", "", "keyspace to USE after connecting")
	flag.StringVar(&username, "username", "", "username for CREDENTIALS auth, if required")
	flag.StringVar(&password, "password", "", "password for CREDENTIALS auth, if required")
	flag.StringVar(&cql, "query", "SELECT * FROM system.local", "CQL statement to execute")
	flag.IntVar(&logLevel, "logLevel", int(zerolog.InfoLevel), "zerolog level (0=debug .. 5=panic)")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.Level(logLevel))
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: zerolog.TimeFormatUnix,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := cqlclient.Connect(ctx, cqlclient.Config{
		Address:            address,
		Username:           username,
		Password:           password,
		Keyspace:           keyspace,
		DefaultConsistency: primitive.ConsistencyOne,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cqldemo: cannot connect")
	}
	defer client.Close()

	options, err := client.Options(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cqldemo: OPTIONS failed")
	}
	log.Info().Interface("options", options).Msg("cqldemo: server supported options")

	result, err := client.QueryDefault(ctx, cql)
	if err != nil {
		log.Fatal().Err(err).Str("cql", cql).Msg("cqldemo: query failed")
	}
	log.Info().Str("cql", cql).Str("result", result.String()).Msg("cqldemo: query succeeded")
}
