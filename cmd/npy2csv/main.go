package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: npy2csv FILE.npy")
		os.Exit(2)
	}
	fileName := os.Args[1]

	npyFile, err := io.NpytoMat64(fileName)
	if err != nil {
		log.Fatal().Err(err).Msg("reading npy file failed")
	}
	log.Info().Str("file", fileName).Msg("reading npy file complete")

	if err := io.Mat64toCSV(fileName+".csv", npyFile); err != nil {
		log.Fatal().Err(err).Msg("writing csv file failed")
	}
	fmt.Printf("Saved %s.csv\n", fileName)
}
