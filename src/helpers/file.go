package helpers

import (
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DeleteDataFile deletes a file
func DeleteDataFile(filePath string) error {
	return os.Remove(filePath)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false // File does not exist
		}

		if logger != nil {
			logger.Infof("Error checking file %s for existence: %s", filename, err)
		}
		return false // Some other error occurred
	}

	return !info.IsDir() // Return true if it's not a directory
}

// EncodeBSON encodes a map into its BSON byte representation.
func EncodeBSON(data map[string]interface{}) ([]byte, error) {
	bsonData, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}

	return bsonData, nil
}

// DecodeBSON decodes BSON bytes back into a Go map.
func DecodeBSON(bsonData []byte) (map[string]interface{}, error) {
	var decodedData map[string]interface{}
	if err := bson.Unmarshal(bsonData, &decodedData); err != nil {
		return nil, fmt.Errorf("error decoding BSON: %w", err)
	}

	return decodedData, nil
}
