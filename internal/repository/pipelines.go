package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/movie-booking/internal/database"
)

func stage(op string, v any) bson.D { return bson.D{{Key: op, Value: v}} }

func lookup(from, localField, as string) bson.D {
	return stage("$lookup", bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	})
}

// unwindKeep unwinds a single-element lookup result and keeps the parent
// when the referenced document is gone.
func unwindKeep(path string) bson.D {
	return stage("$unwind", bson.D{
		{Key: "path", Value: path},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	})
}

// bookingViewPipeline joins bookings with their user, movie and theater.
// The projected summaries take their _id from the booking's own reference
// so orphaned bookings still identify what they pointed at.
func bookingViewPipeline(match bson.D) mongo.Pipeline {
	p := mongo.Pipeline{}
	if len(match) > 0 {
		p = append(p, stage("$match", match))
	}
	return append(p,
		stage("$sort", bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		lookup(database.UsersCollection, "user", "userDoc"),
		unwindKeep("$userDoc"),
		lookup(database.MoviesCollection, "movie", "movieDoc"),
		unwindKeep("$movieDoc"),
		lookup(database.TheatersCollection, "theater", "theaterDoc"),
		unwindKeep("$theaterDoc"),
		stage("$project", bson.D{
			{Key: "_id", Value: 1},
			{Key: "showTime", Value: 1},
			{Key: "numberOfTickets", Value: 1},
			{Key: "totalAmount", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "user", Value: bson.D{
				{Key: "_id", Value: "$user"},
				{Key: "name", Value: "$userDoc.name"},
				{Key: "email", Value: "$userDoc.email"},
			}},
			{Key: "movie", Value: bson.D{
				{Key: "_id", Value: "$movie"},
				{Key: "moviename", Value: "$movieDoc.moviename"},
				{Key: "genre", Value: "$movieDoc.genre"},
				{Key: "language", Value: "$movieDoc.language"},
				{Key: "duration", Value: "$movieDoc.duration"},
			}},
			{Key: "theater", Value: bson.D{
				{Key: "_id", Value: "$theater"},
				{Key: "theatername", Value: "$theaterDoc.theatername"},
				{Key: "location", Value: "$theaterDoc.location"},
				{Key: "movies", Value: "$theaterDoc.movies"},
			}},
		}),
	)
}

// movieTheaterDetailsPipeline flattens every screen assignment into one
// row carrying movie and theater display fields, ordered by movie name.
func movieTheaterDetailsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		stage("$unwind", "$movies"),
		lookup(database.MoviesCollection, "movies.movie", "movieDetails"),
		stage("$unwind", "$movieDetails"),
		stage("$sort", bson.D{
			{Key: "movieDetails.moviename", Value: 1},
			{Key: "theatername", Value: 1},
			{Key: "movies.screenNumber", Value: 1},
		}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: "moviename", Value: "$movieDetails.moviename"},
			{Key: "genre", Value: "$movieDetails.genre"},
			{Key: "language", Value: "$movieDetails.language"},
			{Key: "duration", Value: "$movieDetails.duration"},
			{Key: "cast", Value: "$movieDetails.cast"},
			{Key: "director", Value: "$movieDetails.director"},
			{Key: "theatername", Value: "$theatername"},
			{Key: "location", Value: "$location"},
			{Key: "screens", Value: "$screens"},
			{Key: "screenNumber", Value: "$movies.screenNumber"},
			{Key: "showTimings", Value: "$movies.showTimings"},
		}),
	}
}

// theaterSummaryPipeline groups bookings by theater, movie and show time.
func theaterSummaryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		stage("$group", bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "theater", Value: "$theater"},
				{Key: "movie", Value: "$movie"},
				{Key: "showTime", Value: "$showTime"},
			}},
			{Key: "totalTickets", Value: bson.D{{Key: "$sum", Value: "$numberOfTickets"}}},
			{Key: "totalBookings", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}),
		lookup(database.TheatersCollection, "_id.theater", "theaterDoc"),
		unwindKeep("$theaterDoc"),
		lookup(database.MoviesCollection, "_id.movie", "movieDoc"),
		unwindKeep("$movieDoc"),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: "theaterId", Value: "$_id.theater"},
			{Key: "theatername", Value: "$theaterDoc.theatername"},
			{Key: "movieId", Value: "$_id.movie"},
			{Key: "moviename", Value: "$movieDoc.moviename"},
			{Key: "showTime", Value: "$_id.showTime"},
			{Key: "totalTickets", Value: 1},
			{Key: "totalBookings", Value: 1},
			{Key: "totalAmount", Value: 1},
		}),
		stage("$sort", bson.D{
			{Key: "theatername", Value: 1},
			{Key: "moviename", Value: 1},
			{Key: "showTime", Value: 1},
		}),
	}
}

// movieTotalsPipeline runs against the movies collection so that movies
// without bookings are reported with zero totals.
func movieTotalsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		stage("$lookup", bson.D{
			{Key: "from", Value: database.BookingsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "movie"},
			{Key: "as", Value: "bookings"},
		}),
		stage("$project", bson.D{
			{Key: "_id", Value: 0},
			{Key: "movieId", Value: "$_id"},
			{Key: "moviename", Value: 1},
			{Key: "totalTickets", Value: bson.D{{Key: "$sum", Value: "$bookings.numberOfTickets"}}},
			{Key: "totalBookings", Value: bson.D{{Key: "$size", Value: "$bookings"}}},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$bookings.totalAmount"}}},
		}),
		stage("$sort", bson.D{{Key: "totalTickets", Value: -1}, {Key: "moviename", Value: 1}}),
	}
}
