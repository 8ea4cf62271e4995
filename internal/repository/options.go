package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func findSorted(sort bson.D) *options.FindOptions {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
