package vecdb_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/vecdb"
)

func Example() {
	ctx := context.Background()

	db := vecdb.New()
	defer db.Close()

	if err := db.CreateCollection(ctx, "colors", 3); err != nil {
		log.Fatal(err)
	}

	err := db.Insert(ctx, "colors",
		[][]float32{{10, 12, 4.5}, {10, 11, 10.5}, {10, 20.5, 15}},
		[]string{"red", "green", "blue"},
		"palette.txt",
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.BuildIndex(ctx, "colors"); err != nil {
		log.Fatal(err)
	}

	results, err := db.Query(ctx, "colors", []float32{10, 12.5, 4.5}, 1)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %.4f\n", results[0].Value, results[0].Score)
	// Output: red 0.9998
}

func ExampleDatabase_Insert_dimensionMismatch() {
	ctx := context.Background()

	db := vecdb.New()
	_ = db.CreateCollection(ctx, "colors", 3)

	err := db.Insert(ctx, "colors", [][]float32{{1, 2}}, []string{"short"}, "palette.txt")

	var dm *vecdb.DimensionMismatchError
	if errors.As(err, &dm) {
		fmt.Printf("vector %d: expected %d, got %d\n", dm.Position, dm.Expected, dm.Actual)
	}
	// Output: vector 0: expected 3, got 2
}
