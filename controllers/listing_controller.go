package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/utils"
)

// ListingController handles listing creation and browsing
type ListingController struct {
	db *mongo.Client
}

// NewListingController creates a new listing controller
func NewListingController(db *mongo.Client) *ListingController {
	return &ListingController{db: db}
}

// CreateListing creates a listing for the authenticated host, processing any
// uploaded photos and video
func (lc *ListingController) CreateListing(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, lc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	var req models.ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	listingID := primitive.NewObjectID()

	photoURLs := []string{}
	for i, photo := range req.Photos {
		data, ext, err := utils.DecodeBase64Media(photo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Photo %d: %v", i+1, err),
			})
		}
		name := fmt.Sprintf("%s_%d%s", listingID.Hex(), i, ext)
		if i < len(req.PhotoNames) && req.PhotoNames[i] != "" {
			name = fmt.Sprintf("%s_%d_%s", listingID.Hex(), i, req.PhotoNames[i])
		}
		url, err := utils.UploadListingPhoto(data, name)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Photo %d: %v", i+1, err),
			})
		}
		photoURLs = append(photoURLs, url)
	}

	videoURL := ""
	thumbnailURL := ""
	if req.Video != "" {
		data, ext, err := utils.DecodeBase64Media(req.Video)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Video: " + err.Error(),
			})
		}
		if ext == ".jpg" {
			ext = ".mp4"
		}
		videoURL, err = utils.UploadFile(data, fmt.Sprintf("listings/%s_video%s", listingID.Hex(), ext), "video")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Video: " + err.Error(),
			})
		}

		thumbnailURL, err = utils.GenerateVideoThumbnail(videoURL)
		if err != nil {
			// Thumbnail failure is not fatal
			log.Printf("Failed to generate video thumbnail for listing %s: %v", listingID.Hex(), err)
			thumbnailURL = ""
		}
	}

	now := time.Now()
	listing := models.Listing{
		ID:            listingID,
		HostID:        host.ID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Location:      req.Location,
		PhotoURLs:     photoURLs,
		VideoURL:      videoURL,
		ThumbnailURL:  thumbnailURL,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	listingsCollection := config.GetCollection(lc.db, "listings")
	if _, err := listingsCollection.InsertOne(ctx, listing); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create listing",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Listing created successfully",
		Data:    listing,
	})
}

// GetListings returns active listings for browsing, with optional type filter
func (lc *ListingController) GetListings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if t := c.QueryParam("type"); t != "" {
		filter["type"] = t
	}
	if city := c.QueryParam("city"); city != "" {
		filter["location.city"] = city
	}

	listingsCollection := config.GetCollection(lc.db, "listings")
	cursor, err := listingsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch listings",
		})
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode listings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Listings retrieved successfully",
		Data:    listings,
	})
}

// GetListing returns a single listing by id
func (lc *ListingController) GetListing(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid listing ID",
		})
	}

	var listing models.Listing
	err = config.GetCollection(lc.db, "listings").FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Listing not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch listing",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Listing retrieved successfully",
		Data:    listing,
	})
}

// GetHostListings returns all listings owned by the authenticated host
func (lc *ListingController) GetHostListings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, lc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	listingsCollection := config.GetCollection(lc.db, "listings")
	cursor, err := listingsCollection.Find(ctx,
		bson.M{"hostId": host.ID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch listings",
		})
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode listings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Listings retrieved successfully",
		Data:    listings,
	})
}

// DeactivateListing hides a listing from browsing without deleting it
func (lc *ListingController) DeactivateListing(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, lc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	listingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid listing ID",
		})
	}

	listingsCollection := config.GetCollection(lc.db, "listings")
	result, err := listingsCollection.UpdateOne(ctx,
		bson.M{"_id": listingID, "hostId": host.ID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to deactivate listing",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Listing not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Listing deactivated",
	})
}
